package highlight

import (
	"strings"
)

// Classification of a moderation action with respect to highlight handling.
type Classification int

const (
	ActionIrrelevant Classification = iota
	ActionStick
	ActionUnstick
)

func (c Classification) String() string {
	switch c {
	case ActionStick:
		return "stick"
	case ActionUnstick:
		return "unstick"
	default:
		return "irrelevant"
	}
}

// PostSnapshot is the post state as carried on the inbound event. The engine
// never reaches back to the platform for these fields.
type PostSnapshot struct {
	ID       string
	Title    string
	Body     string
	URL      string
	Author   string
	PostType string
	NSFW     bool
	Spoiler  bool
}

// ModerationEvent is the canonical envelope for an inbound mod-action
// notification. Raw platform payloads are normalized into this shape at the
// intake boundary; the engine never inspects raw event bodies.
type ModerationEvent struct {
	// Free-text action name as reported by the platform (eg "sticky").
	Action string
	// Community the action happened in.
	SourceCommunity string
	// Whether the source community as a whole is marked NSFW.
	SourceIsNSFW bool
	// Target post of the action. May be nil for actions without a post target.
	TargetPost *PostSnapshot
}

// Classify maps a free-text moderation action name to a stick/unstick
// classification. Case-insensitive and total: unknown names are irrelevant.
//
// The stick literals are matched first and win; the unstick containment
// checks only run for names that did not match a stick literal, so a future
// pattern overlap can never classify both ways.
func Classify(actionName string) Classification {
	name := strings.ToLower(strings.TrimSpace(actionName))
	switch name {
	case "sticky", "highlight_post", "highlight":
		return ActionStick
	}
	switch name {
	case "unsticky", "unhighlight_post":
		return ActionUnstick
	}
	if strings.Contains(name, "unhighlight") || strings.Contains(name, "remove_highlight") {
		return ActionUnstick
	}
	return ActionIrrelevant
}
