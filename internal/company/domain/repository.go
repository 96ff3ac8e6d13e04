package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindBranchByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CompanyBranch, error)
	InsertCompany(ctx context.Context, db *gorm.DB, company *Company) error
	InsertBranch(ctx context.Context, db *gorm.DB, branch *CompanyBranch) error
}
