package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hayaneofficial/soccer-career-sim/internal/engine"
	"github.com/hayaneofficial/soccer-career-sim/internal/session"
)

func printView(w io.Writer, v session.View) {
	p := v.Player
	fmt.Fprintf(w, "%s  day %d, week %d  (%s, %s)\n", v.Date, v.Day, v.Week, v.Category, v.Formation)
	fmt.Fprintf(w, "%s  #%d %s, age %d\n", p.Name, p.ShirtNumber, p.Position, p.Age)
	fmt.Fprintf(w, "  CA %.2f / PA %.2f   value %s\n", p.CA, p.PA, p.MarketValueText)
	fmt.Fprintf(w, "  %s, rank %d of %d\n", p.Tier, p.Rank, v.Squad)
	fmt.Fprintf(w, "  HP %d  MP %d  PAP left %.0f\n", p.HP, p.MP, p.PAPRemaining)
	if v.TeamRank != nil {
		fmt.Fprintf(w, "  Team rank %s: %s (CA %d+, avg salary %s)\n",
			v.TeamRank.Code, v.TeamRank.League, v.TeamRank.RequireCA, v.TeamRank.AvgSalaryText)
	}
	if !v.MatchAvailable {
		fmt.Fprintln(w, "  Too tired for a match")
	}

	group := ""
	col := 0
	for _, row := range p.Abilities {
		if row.Group != group {
			if col != 0 {
				fmt.Fprintln(w)
			}
			group, col = row.Group, 0
			fmt.Fprintf(w, "\n%s\n", group)
		}
		fmt.Fprintf(w, "  %-18s %5.1f", row.Key, row.Value)
		col++
		if col == 3 {
			fmt.Fprintln(w)
			col = 0
		}
	}
	if col != 0 {
		fmt.Fprintln(w)
	}

	var apt []string
	for pos, level := range p.Aptitude {
		if level > 0 {
			apt = append(apt, fmt.Sprintf("%s %.1f", pos, level))
		}
	}
	sort.Strings(apt)
	fmt.Fprintf(w, "\nAptitude: %s\n", strings.Join(apt, ", "))
}

func printOutcome(w io.Writer, out engine.Outcome) {
	if out.Story != "" {
		fmt.Fprintf(w, "%s  %s\n", out.Date, out.Story)
	} else {
		fmt.Fprintf(w, "%s\n", out.Date)
	}
	gain := fmt.Sprintf("CA %+.3f", out.Growth.Gained)
	if out.Growth.Skipped {
		gain = "no growth"
	}
	fmt.Fprintf(w, "  %s -> %.2f  HP %d  MP %d  %s  #%d\n", gain, out.CA, out.HP, out.MP, out.Tier, out.ShirtNumber)
	if out.WeeklyGrowth > 0 {
		fmt.Fprintf(w, "  Week done: %d teammates improved\n", out.WeeklyGrowth)
	}
}

func printRoster(w io.Writer, r session.RosterView) {
	fmt.Fprintf(w, "%s  %s  [%s]\n", r.Category, r.Formation, strings.Join(r.Slots, " "))
	tier := ""
	for _, m := range r.Members {
		if m.Tier != tier {
			tier = m.Tier
			fmt.Fprintf(w, "\n%s\n", tier)
		}
		mark := " "
		if m.Controlled {
			mark = "*"
		}
		fmt.Fprintf(w, "%s%3d  #%-3d %-22s %-4s %2d  CA %6.2f  PA %6.2f  %-16s %-9s %3dcm %s\n",
			mark, m.Rank, m.Number, m.Name, m.Position, m.Age, m.CA, m.PA, m.ValueText, m.Form, m.Height, m.Foot)
	}
}
