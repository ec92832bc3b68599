package models

import "github.com/uptrace/bun"

// Club is a member club of the federation.
type Club struct {
	bun.BaseModel `bun:"table:clubs,alias:cl"`

	ClubID int    `bun:"club_id,pk,autoincrement" json:"clubID"`
	Code   string `bun:"code,notnull,unique" json:"code"`
	Name   string `bun:"name,notnull" json:"name"`
	City   string `bun:"city,notnull" json:"city"`
}
