package agent

import (
	"context"
	"fmt"

	"github.com/aeron/abledger"
	"github.com/aeron/abledger/docs"
	"github.com/aeron/abledger/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// newFacilitator creates the expert in charge of the conversation, with
// every other expert as a callable tool.
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skills from the Tools and ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is here primarily to understand the capital gains and losses
			computed from their trading ledgers, and to chase down reconciliation
			problems such as unmatched transfers.

			Devise a plan of questions to ask each expert and come up with the best
			response to the user's request.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewResearcher returns an expert grounded in web search, for questions
// about exchanges, assets and market events.
func NewResearcher() *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `This expert knows about exchanges, crypto assets and market
		history, and can search the web for recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in cryptocurrency markets and exchanges. You leverage
			Google Search to ground your assertions. You can get the latest news
			too, and you know how to relate them to the user's request.
			`}}},
		},
	}
}

// NewAccountant returns the expert in charge of the user's processed
// ledger. Its tools read from the given book.
func NewAccountant(book *abledger.Book) *Expert {
	lib := []Function{summaryFunc(book), transfersFunc(book), topicFunc()}

	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant. It has access to the user's processed
		trading ledgers and can report gains summaries, per-account figures and
		the transfer reconciliation status.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an accountant in charge of the user's trading ledgers.
			Use the available tools to report on the user's gains, per-account
			balances and costs, and the transfer reconciliation status. Other
			experts might ask you questions too, pardon their approximative
			language and figure out what they meant.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements Function from a declaration and a closure.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func errResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"error": err.Error(),
		},
	}
}

func okResponse(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"output": output,
		},
	}
}

const dateArgDoc = `A date in YYYY-MM-DD or YYYY-MM-DD-HH-MM format.`

func summaryFunc(book *abledger.Book) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Summary",
			Description: `Summary reports per-account balances, costs, proceeds,
			profits and chargeable gains between two dates, with portfolio totals.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start": {Type: genai.TypeString, Description: dateArgDoc + " Start of the range, inclusive."},
					"end":   {Type: genai.TypeString, Description: dateArgDoc + " End of the range, inclusive."},
				},
				Required: []string{"start", "end"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted gains summary.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			start, err := parseDateArg(args, "start")
			if err != nil {
				return errResponse(id, "Summary", err)
			}
			end, err := parseDateArg(args, "end")
			if err != nil {
				return errResponse(id, "Summary", err)
			}
			s, err := book.NewSummary(start, end)
			if err != nil {
				return errResponse(id, "Summary", err)
			}
			return okResponse(id, "Summary", renderer.SummaryMarkdown(s))
		},
	}
}

func transfersFunc(book *abledger.Book) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Transfers",
			Description: `Transfers reports the cross-exchange transfer
			reconciliation: which transfers were matched away and which remain
			unmatched.`,
			Parameters: &genai.Schema{Type: genai.TypeObject},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted reconciliation report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return okResponse(id, "Transfers", renderer.TransfersMarkdown(book.TransferReport()))
		},
	}
}

func topicFunc() *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Topic",
			Description: `Topic returns the documentation about how the
			calculator works: matching, pooling, transfers, rates, formats.
			"*" returns everything.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name": {Type: genai.TypeString, Description: "The topic name."},
				},
				Required: []string{"name"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The markdown documentation for the topic.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			name, ok := args["name"].(string)
			if !ok {
				return errResponse(id, "Topic", fmt.Errorf("argument 'name' is not a string but %T", args["name"]))
			}
			content, err := docs.GetTopic(name)
			if err != nil {
				return errResponse(id, "Topic", err)
			}
			return okResponse(id, "Topic", content)
		},
	}
}

func parseDateArg(args map[string]any, key string) (abledger.Datetime, error) {
	sdate, ok := args[key].(string)
	if !ok {
		return abledger.Datetime{}, fmt.Errorf("argument %q is not a string as expected but %T", key, args[key])
	}
	d, err := abledger.ParseDatetime(sdate)
	if err != nil {
		return abledger.Datetime{}, fmt.Errorf("argument %q must be a valid date, got %q: %w", key, sdate, err)
	}
	return d, nil
}
