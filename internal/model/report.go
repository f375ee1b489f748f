// internal/model/report.go
package model

import "time"

// Report is a saved export definition. Filters and Data are opaque serialized strings.
type Report struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Type      string    `db:"type" json:"type"`
	Format    string    `db:"format" json:"format"`
	UserID    string    `db:"user_id" json:"userId"`
	Filters   *string   `db:"filters" json:"filters,omitempty"`
	Data      *string   `db:"data" json:"data,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	User *User `json:"user,omitempty"`
}

// ReportPatch has no CreatedAt or UserID: both are fixed at creation.
type ReportPatch struct {
	Title   *string
	Type    *string
	Format  *string
	Filters *string
	Data    *string
}

func (p ReportPatch) Apply(r *Report) {
	setString(&r.Title, p.Title)
	setString(&r.Type, p.Type)
	setString(&r.Format, p.Format)
	setOptional(&r.Filters, p.Filters)
	setOptional(&r.Data, p.Data)
}
