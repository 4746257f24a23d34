package roster

import "fmt"

var familyNames = []string{
	"Sato", "Suzuki", "Takahashi", "Tanaka", "Ito", "Watanabe", "Yamamoto", "Nakamura", "Kobayashi", "Kato",
	"Yoshida", "Yamada", "Sasaki", "Yamaguchi", "Matsumoto", "Inoue", "Kimura", "Hayashi", "Saito", "Shimizu",
	"Mori", "Ikeda", "Hashimoto", "Abe", "Ishikawa", "Yamazaki", "Murakami", "Fujita", "Aoki", "Fukuda",
	"Okada", "Fujii", "Nakajima", "Ogawa", "Goto", "Okamoto", "Hasegawa", "Murata", "Kondo", "Ono",
	"Shibata", "Takagi", "Kono", "Yamauchi", "Ishida", "Miura", "Harada", "Morita", "Takeuchi", "Sakai",
	"Nishimura", "Chiba", "Araki", "Wada", "Uchida", "Nakano", "Kiyota", "Manabe", "Iwamoto", "Horie",
}

var givenNames = []string{
	"Sho", "Hiroto", "Ren", "Aoi", "Minato", "Itsuki", "Yuma", "Haruto", "Yamato", "Hinata",
	"Riku", "Kai", "Sora", "Tsubasa", "Kenta", "Takuya", "Naoki", "Ryota", "Tatsuya", "Shun",
	"Hayato", "Keita", "Kyohei", "Daiki", "Sota", "Junya", "Kazuma", "Yuto", "Shohei", "Rin",
	"Eito", "Taisei", "Shunsuke", "Eita", "Keigo", "Yuta", "Takumi", "Taiki", "Yuuto", "Soma",
	"Takumi", "Kota", "Haru", "Kohei", "Makoto", "Tomoya", "Tomoki", "Shuto",
}

// randomName draws a name not yet issued by this generator.
func (g *Generator) randomName() string {
	var name string
	for i := 0; i < 50; i++ {
		name = familyNames[g.src.Intn(len(familyNames))] + " " + givenNames[g.src.Intn(len(givenNames))]
		if !g.used[name] {
			break
		}
	}
	if g.used[name] {
		name = fmt.Sprintf("%s %d", name, len(g.used))
	}
	g.used[name] = true
	return name
}
