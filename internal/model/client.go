// internal/model/client.go
package model

import "time"

type Client struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Company   *string   `db:"company" json:"company,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type ClientPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
}

func (p ClientPatch) Apply(c *Client) {
	setString(&c.Name, p.Name)
	setString(&c.Email, p.Email)
	setOptional(&c.Phone, p.Phone)
	setOptional(&c.Company, p.Company)
}
