package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindBranchByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ClientBranch, error)
	InsertClient(ctx context.Context, db *gorm.DB, client *Client) error
	InsertBranch(ctx context.Context, db *gorm.DB, branch *ClientBranch) error
}
