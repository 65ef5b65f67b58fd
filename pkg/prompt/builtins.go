package prompt

// BuiltinTemplates provides the names of templates registered at init
var BuiltinTemplates = struct {
	StepByStep string
}{
	StepByStep: "step_by_step",
}

// Categories defines template categories
var Categories = struct {
	Reasoning string
	General   string
}{
	Reasoning: "reasoning",
	General:   "general",
}

// QuestionVar is the single slot of the step-by-step template.
const QuestionVar = "question"

// StepByStepContent is the chain-of-thought question template.
const StepByStepContent = `Question: {question}

Answer: Let's think step by step.`

func stepByStep() *Template {
	return &Template{
		Name:        BuiltinTemplates.StepByStep,
		Description: "Ask a question with a chain-of-thought preamble",
		Category:    Categories.Reasoning,
		Variables: []Variable{
			{Name: QuestionVar, Description: "The user's question", Required: true},
		},
		content: StepByStepContent,
	}
}

func init() {
	if err := Register(stepByStep()); err != nil {
		panic(err)
	}
}
