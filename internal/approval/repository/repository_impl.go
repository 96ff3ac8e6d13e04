package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitcrm/orbitcrm/internal/approval/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListRules(ctx context.Context, db *gorm.DB) ([]domain.ApprovalRule, error) {
	var rules []domain.ApprovalRule
	err := db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order asc, id asc")
		}).
		Order("sort_order asc, id asc").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) ListActiveRules(ctx context.Context, db *gorm.DB) ([]domain.ApprovalRule, error) {
	var rules []domain.ApprovalRule
	err := db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("step_order asc, id asc")
		}).
		Where("is_active = ?", true).
		Order("sort_order asc, id asc").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) FindRuleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ApprovalRule, error) {
	var rule domain.ApprovalRule
	err := db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order asc, id asc")
		}).
		Where("id = ?", id).
		First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repo) InsertRule(ctx context.Context, db *gorm.DB, rule *domain.ApprovalRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) SaveRule(ctx context.Context, db *gorm.DB, rule *domain.ApprovalRule) error {
	return db.WithContext(ctx).Omit("Steps").Save(rule).Error
}

func (r *repo) ReplaceSteps(ctx context.Context, db *gorm.DB, ruleID snowflake.ID, steps []domain.ApprovalRuleStep) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rule_id = ?", ruleID).Delete(&domain.ApprovalRuleStep{}).Error; err != nil {
			return err
		}
		if len(steps) > 0 {
			if err := tx.Create(&steps).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) DeleteRule(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rule_id = ?", id).Delete(&domain.ApprovalRuleStep{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.ApprovalRule{}).Error
	})
}

func (r *repo) ReplaceChain(ctx context.Context, db *gorm.DB, quoteID snowflake.ID, approvals []domain.QuoteApproval) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", quoteID).Delete(&domain.QuoteApproval{}).Error; err != nil {
			return err
		}
		if len(approvals) > 0 {
			if err := tx.Create(&approvals).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) FindApprovalByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.QuoteApproval, error) {
	var approval domain.QuoteApproval
	err := db.WithContext(ctx).Where("id = ?", id).First(&approval).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *repo) ListByQuote(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) ([]domain.QuoteApproval, error) {
	var approvals []domain.QuoteApproval
	err := db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("step_order asc").
		Find(&approvals).Error
	if err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *repo) FirstWithStatus(ctx context.Context, db *gorm.DB, quoteID snowflake.ID, status string) (*domain.QuoteApproval, error) {
	var approval domain.QuoteApproval
	err := db.WithContext(ctx).
		Where("quote_id = ? AND status = ?", quoteID, status).
		Order("step_order asc").
		First(&approval).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *repo) ListPendingFor(ctx context.Context, db *gorm.DB, userID snowflake.ID, roleName string) ([]domain.QuoteApproval, error) {
	var approvals []domain.QuoteApproval
	err := db.WithContext(ctx).
		Where("status = ?", domain.StatusPending).
		Where(
			db.Session(&gorm.Session{NewDB: true}).
				Where("approver_type = ? AND approver_user_id = ?", domain.ApproverUser, userID).
				Or("approver_type = ? AND approver_role = ?", domain.ApproverRole, roleName),
		).
		Order("created_at asc").
		Find(&approvals).Error
	if err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *repo) TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, expected, next string, actedBy snowflake.ID, actedAt time.Time, comment *string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.QuoteApproval{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]any{
			"status":      next,
			"acted_by_id": actedBy,
			"acted_at":    actedAt,
			"comment":     comment,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) SetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, expected, next string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.QuoteApproval{}).
		Where("id = ? AND status = ?", id, expected).
		Update("status", next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) CancelRemaining(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&domain.QuoteApproval{}).
		Where("quote_id = ? AND status IN ?", quoteID, []string{domain.StatusWaiting, domain.StatusPending}).
		Update("status", domain.StatusCancelled).Error
}
