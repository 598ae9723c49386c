package domain

// FormEvent is the intake webhook payload. Answers are positional:
// first name, last name, phone.
type FormEvent struct {
	FormID              string           `json:"formId"`
	CustomerID          string           `json:"customerId"`
	QuestionsAndAnswers []QuestionAnswer `json:"questionsAndAnswers"`
}

type QuestionAnswer struct {
	Answer []string `json:"answer"`
}

// TransactionEvent is the POS transaction webhook payload.
type TransactionEvent struct {
	ItemSold      string `json:"itemSold"`
	CustomerID    string `json:"customerId"`
	PurchaseType  string `json:"purchaseType"`
	UserPaymentID string `json:"userPaymentId"`
	TransactionID string `json:"transactionId"`
}
