package model

// LegalBasisMarker is the fixed label separating an answer's conclusion
// from its quoted legal text. The marker is part of the answer contract:
// the model is instructed to emit it and the exporter splits on it.
const LegalBasisMarker = "法律依据："

// AnswerResult is one answered question.
type AnswerResult struct {
	QuestionID    string `json:"question_id"`
	QuestionTitle string `json:"question_title"`
	Answer        string `json:"answer"`
}
