package consultation

// Question is a planned follow-up bound to the intent field it should fill.
type Question struct {
	Field Field
	Text  string
}

// questionOrder is the planning priority. Channels come first because they
// constrain everything downstream, then budget, then the descriptive goal
// and audience fields.
var questionOrder = []Field{FieldChannels, FieldBudget, FieldGoal, FieldAudience}

// questionTemplates holds the phrasings per field. When a field has to be
// asked again after an unusable answer, the next template in the list is
// used so the session does not repeat itself word for word.
var questionTemplates = map[Field][]string{
	FieldChannels: {
		"Which marketing channels would you like to use? For example Instagram, Facebook, email, or Google Ads.",
		"Where do you want this campaign to run? Social media, email, search ads, or somewhere else?",
	},
	FieldBudget: {
		"Do you have a budget in mind for this campaign?",
		"Roughly how much are you planning to spend, even a ballpark figure helps.",
	},
	FieldGoal: {
		"What product or service would you like to promote?",
		"Tell me a bit more about what you are marketing. What exactly should the campaign sell?",
	},
	FieldAudience: {
		"Who is your target audience for this campaign?",
		"Who are you trying to reach? Think age group, interests, or location.",
	},
}

// Planner picks the next question to ask. It is pure over the state it is
// given and never mutates it.
type Planner struct{}

func NewPlanner() *Planner { return &Planner{} }

// Next returns the highest-priority question for a field the intent is still
// missing, or nil when the core fields are all present or the question
// ceiling has been reached. Budget is optional for completeness but is still
// asked while the ceiling allows, matching the priority order.
func (p *Planner) Next(st *State) *Question {
	if st.QuestionCount >= st.MaxQuestions {
		return nil
	}
	if st.Intent.CoreComplete() {
		return nil
	}
	for _, f := range questionOrder {
		if st.Intent.Has(f) {
			continue
		}
		return &Question{Field: f, Text: p.template(st, f)}
	}
	return nil
}

func (p *Planner) template(st *State, f Field) string {
	templates := questionTemplates[f]
	asked := 0
	for _, qa := range st.QAHistory {
		if qa.Field == f {
			asked++
		}
	}
	return templates[asked%len(templates)]
}
