package valuation

// TeamRank is one rung of the club ladder a player can aspire to.
type TeamRank struct {
	Code      string `json:"code"`
	League    string `json:"league"`
	RequireCA int    `json:"require_ca"`
	AvgSalary int64  `json:"avg_salary"`
}

// TeamRanks is ordered from the top of the ladder down.
var TeamRanks = []TeamRank{
	{Code: "S", League: "European top flight", RequireCA: 150, AvgSalary: 300_000_000},
	{Code: "A", League: "J1 upper table", RequireCA: 120, AvgSalary: 80_000_000},
	{Code: "B", League: "J1 lower table", RequireCA: 100, AvgSalary: 30_000_000},
	{Code: "C", League: "J2", RequireCA: 80, AvgSalary: 10_000_000},
	{Code: "D", League: "J3/JFL", RequireCA: 50, AvgSalary: 4_000_000},
}

// RankFor returns the highest rank whose CA requirement is met.
func RankFor(ca float64) (TeamRank, bool) {
	for _, r := range TeamRanks {
		if ca >= float64(r.RequireCA) {
			return r, true
		}
	}
	return TeamRank{}, false
}
