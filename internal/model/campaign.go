package model

import "time"

// ScopedEntity is the minimal contract the row scope filter needs. It is
// deliberately an interface so the filter works over campaign rows, schedule
// rows and report rows alike.
type ScopedEntity interface {
	ScopeDepartment() string
	ScopeAgency() string
}

// Campaign is a persisted campaign row with every permission-governed column
// populated. Raw rows never leave the trust boundary; read paths convert
// them to CampaignView and mask before transmission.
type Campaign struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Creative      string    `db:"creative" json:"creative"`
	Channel       string    `db:"channel" json:"channel"`
	StartDate     time.Time `db:"start_date" json:"start_date"`
	EndDate       time.Time `db:"end_date" json:"end_date"`
	Spend         int64     `db:"spend" json:"spend"`
	BudgetAccount string    `db:"budget_account" json:"budget_account"`
	Department    string    `db:"department" json:"department"`
	Agency        string    `db:"agency" json:"agency"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

func (c Campaign) ScopeDepartment() string { return c.Department }

func (c Campaign) ScopeAgency() string { return c.Agency }

// CampaignView is the outward-facing shape of a campaign row. Maskable
// numeric and date fields are pointers so a denied column serializes as
// null instead of a zero that could be mistaken for data.
type CampaignView struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Creative      string     `json:"creative"`
	Channel       string     `json:"channel"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	Spend         *int64     `json:"spend"`
	BudgetAccount string     `json:"budget_account"`
	Department    string     `json:"department"`
	Agency        string     `json:"agency"`
}

// View converts a raw row into its outward shape with every field present.
func (c Campaign) View() CampaignView {
	start, end, spend := c.StartDate, c.EndDate, c.Spend
	return CampaignView{
		ID:            c.ID,
		Name:          c.Name,
		Creative:      c.Creative,
		Channel:       c.Channel,
		StartDate:     &start,
		EndDate:       &end,
		Spend:         &spend,
		BudgetAccount: c.BudgetAccount,
		Department:    c.Department,
		Agency:        c.Agency,
	}
}
