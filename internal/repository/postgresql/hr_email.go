package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/laterequest"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
)

type hrEmailRepositoryImpl struct {
	db *database.DB
}

func NewHREmailRepository(db *database.DB) laterequest.RecipientRepository {
	return &hrEmailRepositoryImpl{db: db}
}

// ListActiveHREmails implements laterequest.RecipientRepository.
func (r *hrEmailRepositoryImpl) ListActiveHREmails(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT email FROM hr_notification_emails WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query hr emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan hr email: %w", err)
		}
		emails = append(emails, email)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return emails, nil
}
