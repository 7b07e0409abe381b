package invoicing

import "github.com/invoicedash/backend/internal/domain/invoicing"

// Summary messages returned with a form state
const (
	MsgMissingFields = "Missing Fields. Invoice not created."
	MsgCreateDBError = "Database Error: Invoice not created."
	MsgUpdateDBError = "Database Error: Invoice not updated."
	MsgDeleteDBError = "Database Error: Invoice not deleted."
)

// FormState is what a form is re-rendered with after a failed submission
type FormState struct {
	Errors  invoicing.FieldErrors `json:"errors,omitempty"`
	Message string                `json:"message,omitempty"`
	Values  invoicing.FormFields  `json:"values,omitempty"`
}

// ActionResult is the outcome of a mutation: either a form state to render,
// a path the client must navigate to, or neither when the action completed in place.
type ActionResult struct {
	State      *FormState
	RedirectTo string
}

// Redirect returns a result that sends the client to path
func Redirect(path string) *ActionResult {
	return &ActionResult{RedirectTo: path}
}

// Completed returns a result for an action that finished in place
func Completed() *ActionResult {
	return &ActionResult{}
}

// Render returns a result that re-renders the form with state
func Render(state *FormState) *ActionResult {
	return &ActionResult{State: state}
}

// IsRedirect reports whether the client must navigate away
func (r *ActionResult) IsRedirect() bool {
	return r.RedirectTo != ""
}

// failureMessages maps each operation to its surfaced database error message
var failureMessages = map[invoicing.Operation]string{
	invoicing.OpCreate: MsgCreateDBError,
	invoicing.OpUpdate: MsgUpdateDBError,
	invoicing.OpDelete: MsgDeleteDBError,
}
