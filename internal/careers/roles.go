// Package careers holds the open roles applicants can pick from.
package careers

const (
	GeneralRoleID    = "general"
	GeneralRoleTitle = "General Interest"
)

type Role struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

var Roles = []Role{
	{ID: "licensed-sales-agent", Title: "Licensed Insurance Sales Agent"},
	{ID: "customer-service-representative", Title: "Customer Service Representative"},
	{ID: "commercial-lines-account-manager", Title: "Commercial Lines Account Manager"},
	{ID: "personal-lines-csr", Title: "Personal Lines CSR"},
	{ID: "office-administrator", Title: "Office Administrator"},
}

// Resolve maps a role id to its role; unknown or empty ids fall back to
// general interest.
func Resolve(id string) Role {
	for _, r := range Roles {
		if r.ID == id {
			return r
		}
	}
	return Role{ID: GeneralRoleID, Title: GeneralRoleTitle}
}
