package webhook

import "github.com/go-go-golems/cricket/pkg/webhook/wire"

// Follow-up intent identifiers collected through Questions.
const (
	IntentPermission              = "actions.intent.PERMISSION"
	IntentOption                  = "actions.intent.OPTION"
	IntentConfirmation            = "actions.intent.CONFIRMATION"
	IntentDateTime                = "actions.intent.DATETIME"
	IntentSignIn                  = "actions.intent.SIGN_IN"
	IntentPlace                   = "actions.intent.PLACE"
	IntentNewSurface              = "actions.intent.NEW_SURFACE"
	IntentTransactionRequirements = "actions.intent.TRANSACTION_REQUIREMENTS_CHECK"
	IntentTransactionDecision     = "actions.intent.TRANSACTION_DECISION"
	IntentText                    = "actions.intent.TEXT"
)

// Question requests one specific follow-up input from the platform. At most
// one Question may be accumulated per turn.
//
// A "solo" Question carries its spoken prompt inside the value spec rather
// than as a rich-response item; composition synthesizes a placeholder spoken
// item for it so the platform's at-least-one-spoken-item rule holds without
// showing literal text to the user. Option selects are the exception: they
// must be accompanied by an explicit spoken fragment.
type Question struct {
	Intent string
	// ValueSpec is the typed payload sent with the expected intent; Type is
	// its type identifier, attached under "@type".
	Type      string
	ValueSpec map[string]any

	solo bool
}

func (Question) fragmentKind() string { return "question" }

func (q Question) expectedIntent() *wire.ExpectedIntent {
	data := map[string]any{}
	for k, v := range q.ValueSpec {
		data[k] = v
	}
	if q.Type != "" {
		data["@type"] = q.Type
	}
	if len(data) == 0 {
		data = nil
	}
	return &wire.ExpectedIntent{Intent: q.Intent, InputValueData: data}
}

const valueSpecPrefix = "type.googleapis.com/google.actions.v2."

// NewPermission asks the user to grant the listed permissions, explained by
// reason.
func NewPermission(reason string, permissions ...string) Question {
	return Question{
		Intent: IntentPermission,
		Type:   valueSpecPrefix + "PermissionValueSpec",
		ValueSpec: map[string]any{
			"optContext":  reason,
			"permissions": permissions,
		},
		solo: true,
	}
}

// NewConfirmation asks the user to confirm or deny.
func NewConfirmation(prompt string) Question {
	return Question{
		Intent: IntentConfirmation,
		Type:   valueSpecPrefix + "ConfirmationValueSpec",
		ValueSpec: map[string]any{
			"dialogSpec": map[string]any{"requestConfirmationText": prompt},
		},
		solo: true,
	}
}

// NewSignIn asks the user to link their account.
func NewSignIn(reason string) Question {
	spec := map[string]any{}
	if reason != "" {
		spec["optContext"] = reason
	}
	return Question{
		Intent:    IntentSignIn,
		Type:      valueSpecPrefix + "SignInValueSpec",
		ValueSpec: spec,
		solo:      true,
	}
}

// NewDateTime asks for a date and time, with per-stage prompts.
func NewDateTime(prompt, datePrompt, timePrompt string) Question {
	return Question{
		Intent: IntentDateTime,
		Type:   valueSpecPrefix + "DateTimeValueSpec",
		ValueSpec: map[string]any{
			"dialogSpec": map[string]any{
				"requestDatetimeText": prompt,
				"requestDateText":     datePrompt,
				"requestTimeText":     timePrompt,
			},
		},
		solo: true,
	}
}

// NewPlace asks for a location.
func NewPlace(prompt, context string) Question {
	return Question{
		Intent: IntentPlace,
		Type:   valueSpecPrefix + "PlaceValueSpec",
		ValueSpec: map[string]any{
			"dialogSpec": map[string]any{
				"extension": map[string]any{
					"@type":             valueSpecPrefix + "PlaceValueSpec.PlaceDialogSpec",
					"requestPrompt":     prompt,
					"permissionContext": context,
				},
			},
		},
		solo: true,
	}
}

// NewNewSurface asks to hand the conversation over to a surface with the given
// capability.
func NewNewSurface(context, title string, capabilities ...string) Question {
	return Question{
		Intent: IntentNewSurface,
		Type:   valueSpecPrefix + "NewSurfaceValueSpec",
		ValueSpec: map[string]any{
			"context":           context,
			"notificationTitle": title,
			"capabilities":      capabilities,
		},
		solo: true,
	}
}

// NewTransactionRequirements checks whether the user can transact.
func NewTransactionRequirements() Question {
	return Question{
		Intent:    IntentTransactionRequirements,
		Type:      valueSpecPrefix + "TransactionRequirementsCheckSpec",
		ValueSpec: map[string]any{},
		solo:      true,
	}
}

// NewTransactionDecision asks the user to approve a proposed order.
func NewTransactionDecision(spec map[string]any) Question {
	return Question{
		Intent:    IntentTransactionDecision,
		Type:      valueSpecPrefix + "TransactionDecisionValueSpec",
		ValueSpec: spec,
		solo:      true,
	}
}

// SelectOption is one entry of a list or carousel option select.
type SelectOption struct {
	Key         string
	Title       string
	Description string
	Synonyms    []string
	Image       *wire.Image
}

// NewListSelect asks the user to pick from a list. Not a solo question: a
// spoken fragment must accompany it.
func NewListSelect(title string, options ...SelectOption) Question {
	return Question{
		Intent: IntentOption,
		Type:   valueSpecPrefix + "OptionValueSpec",
		ValueSpec: map[string]any{
			"listSelect": map[string]any{
				"title": title,
				"items": selectItems(options),
			},
		},
	}
}

// NewCarouselSelect asks the user to pick from a carousel. Not a solo
// question: a spoken fragment must accompany it.
func NewCarouselSelect(options ...SelectOption) Question {
	return Question{
		Intent: IntentOption,
		Type:   valueSpecPrefix + "OptionValueSpec",
		ValueSpec: map[string]any{
			"carouselSelect": map[string]any{
				"items": selectItems(options),
			},
		},
	}
}

func selectItems(options []SelectOption) []map[string]any {
	items := make([]map[string]any, 0, len(options))
	for _, o := range options {
		item := map[string]any{
			"optionInfo": map[string]any{
				"key":      o.Key,
				"synonyms": o.Synonyms,
			},
			"title": o.Title,
		}
		if o.Description != "" {
			item["description"] = o.Description
		}
		if o.Image != nil {
			item["image"] = o.Image
		}
		items = append(items, item)
	}
	return items
}
