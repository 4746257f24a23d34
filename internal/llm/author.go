// Proposal prompts: one day's activity for the player, and an initial
// ability set for a new player from a free-text background.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hayaneofficial/soccer-career-sim/internal/attributes"
	"github.com/hayaneofficial/soccer-career-sim/internal/intake"
)

// Author proposes content the engine sizes and applies.
type Author interface {
	ProposeActivity(ctx context.Context, req ActivityRequest) (intake.Activity, error)
	ProposeAttributes(ctx context.Context, p Profile) (map[string]float64, string, error)
}

// ActivityRequest is the situation handed to an author for one day.
type ActivityRequest struct {
	Date     string
	Name     string
	Position string
	Category string
	Tier     string
	CA       float64
	HP       int
	MP       int
	Action   string // the user's free-text plan for the day
	Match    bool
}

// Profile describes a player being created.
type Profile struct {
	Name       string
	Age        int
	Position   string
	Background string
}

// ProposeActivity asks the model for a day's activity record.
func (c *Client) ProposeActivity(ctx context.Context, req ActivityRequest) (intake.Activity, error) {
	if !c.Enabled() {
		return intake.Activity{}, ErrDisabled
	}
	text, err := c.Complete(ctx, activitySystemPrompt, buildActivityPrompt(req), 600)
	if err != nil {
		return intake.Activity{}, fmt.Errorf("propose activity: %w", err)
	}
	a, err := intake.DecodeActivity([]byte(text))
	if err != nil {
		return intake.Activity{}, fmt.Errorf("propose activity: %w", err)
	}
	return a, nil
}

// ProposeAttributes asks the model for an initial ability set.
func (c *Client) ProposeAttributes(ctx context.Context, p Profile) (map[string]float64, string, error) {
	if !c.Enabled() {
		return nil, "", ErrDisabled
	}
	text, err := c.Complete(ctx, attributesSystemPrompt, buildAttributesPrompt(p), 900)
	if err != nil {
		return nil, "", fmt.Errorf("propose attributes: %w", err)
	}
	attrs, comment, err := intake.DecodeAttributes([]byte(text))
	if err != nil {
		return nil, "", fmt.Errorf("propose attributes: %w", err)
	}
	return attrs, comment, nil
}

const activitySystemPrompt = `You narrate the daily life of a football player in a career simulation.
Given the player's situation and plan for the day, describe what happened and
propose its effects. Respond ONLY with a JSON object:
{"story": "...", "grow_stats": {"Ability": delta, ...}, "hp_cost": int, "mp_cost": int,
 "relation_change": {"Teammate Name": delta}, "base_intensity": 0.01-0.5, "performance": 0.6-1.5}
grow_stats keys must be ability names from the list given. Deltas are small
(0.05 to 0.5). Rest days have negative costs. Omit relation_change when nobody
was involved.`

const attributesSystemPrompt = `You are a football scout. From a player's profile, infer every ability on a
1.0 to 20.0 scale (10 is an average player at their level). Respond ONLY with
a JSON object: {"attributes": {"Ability": value, ...}, "comment": "one sentence"}`

func buildActivityPrompt(req ActivityRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", req.Date)
	fmt.Fprintf(&b, "Player: %s, %s, %s squad, tier %s\n", req.Name, req.Position, req.Category, req.Tier)
	fmt.Fprintf(&b, "CA %.1f, HP %d, MP %d\n", req.CA, req.HP, req.MP)
	if req.Match {
		b.WriteString("Today is a match day.\n")
	}
	fmt.Fprintf(&b, "Abilities: %s\n\n", strings.Join(attributes.Keys(), ", "))
	fmt.Fprintf(&b, "Plan: %s", req.Action)
	return b.String()
}

func buildAttributesPrompt(p Profile) string {
	return fmt.Sprintf("Name: %s\nAge: %d\nPosition: %s\nBackground: %s\n\nAbilities: %s",
		p.Name, p.Age, p.Position, p.Background, strings.Join(attributes.Keys(), ", "))
}

// Fallback tries Primary and degrades to Backup on any failure.
type Fallback struct {
	Primary Author
	Backup  Author
}

// ProposeActivity implements Author.
func (f Fallback) ProposeActivity(ctx context.Context, req ActivityRequest) (intake.Activity, error) {
	if f.Primary != nil {
		a, err := f.Primary.ProposeActivity(ctx, req)
		if err == nil {
			return a, nil
		}
		slog.Warn("activity proposal failed, using rule book", "error", err)
	}
	return f.Backup.ProposeActivity(ctx, req)
}

// ProposeAttributes implements Author.
func (f Fallback) ProposeAttributes(ctx context.Context, p Profile) (map[string]float64, string, error) {
	if f.Primary != nil {
		attrs, comment, err := f.Primary.ProposeAttributes(ctx, p)
		if err == nil {
			return attrs, comment, nil
		}
		slog.Warn("attribute proposal failed, using rule book", "error", err)
	}
	return f.Backup.ProposeAttributes(ctx, p)
}

// NewAuthor returns the client backed by the rule book, or the rule book
// alone when the client is disabled.
func NewAuthor(c *Client) Author {
	if !c.Enabled() {
		return RuleBook{}
	}
	return Fallback{Primary: c, Backup: RuleBook{}}
}
