package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"mailview/models"
	"mailview/utils"
)

// EmailStore is the per-account message cache.
type EmailStore struct {
	db *sqlx.DB
}

// NewEmailStore creates a new EmailStore.
func NewEmailStore(db *sqlx.DB) *EmailStore {
	return &EmailStore{db: db}
}

// listColumns is the projection used by listings and search. The heavy
// body columns are only loaded by GetByID.
const listColumns = `
	"id", "account_id", "message_id", "uid", "subject",
	"sender_email", "sender_name", "snippet", "received_at",
	"is_read", "is_starred", "labels", "has_attachments", "folder",
	"created_at", "updated_at"
`

var sortColumns = map[string]string{
	"received_at":  `"received_at"`,
	"subject":      `"subject"`,
	"sender_email": `"sender_email"`,
}

// Upsert inserts the email or overwrites the existing row with the same
// (account_id, message_id). The conflict target is the unique index, which
// makes the insert-or-update atomic.
func (s *EmailStore) Upsert(ctx context.Context, email *models.Email) error {
	const query = `
		insert into "emails" (
			"account_id", "message_id", "uid", "thread_id", "subject",
			"sender_email", "sender_name", "recipient_email", "snippet",
			"body_text", "body_html", "received_at", "is_read", "is_starred",
			"labels", "has_attachments", "folder"
		) values (
			:account_id, :message_id, :uid, :thread_id, :subject,
			:sender_email, :sender_name, :recipient_email, :snippet,
			:body_text, :body_html, :received_at, :is_read, :is_starred,
			:labels, :has_attachments, :folder
		)
		on conflict ( "account_id", "message_id" ) do update set
			"uid" = excluded."uid" ,
			"thread_id" = excluded."thread_id" ,
			"subject" = excluded."subject" ,
			"sender_email" = excluded."sender_email" ,
			"sender_name" = excluded."sender_name" ,
			"recipient_email" = excluded."recipient_email" ,
			"snippet" = excluded."snippet" ,
			"body_text" = excluded."body_text" ,
			"body_html" = excluded."body_html" ,
			"received_at" = excluded."received_at" ,
			"is_read" = excluded."is_read" ,
			"is_starred" = excluded."is_starred" ,
			"labels" = excluded."labels" ,
			"has_attachments" = excluded."has_attachments" ,
			"folder" = excluded."folder" ,
			"updated_at" = current_timestamp
		returning "id" ;
	`

	rows, err := sqlx.NamedQueryContext(ctx, s.db, query, email)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&email.ID); err != nil {
			return err
		}
	}

	return rows.Err()
}

// ListByFolder returns one page of a folder, newest first by default.
func (s *EmailStore) ListByFolder(ctx context.Context, accountID int64, page, limit int, folder, sortBy, sortOrder string) ([]models.Email, int64, error) {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = `"received_at"`
	}

	order := "desc"
	if strings.EqualFold(sortOrder, "asc") {
		order = "asc"
	}

	countQuery := `
		select count(*)
		from "emails"
		where "account_id" = ? and "folder" = ? ;
	`

	var total int64
	if err := s.db.GetContext(ctx, &total, countQuery, accountID, folder); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		select `+listColumns+`
		from "emails"
		where "account_id" = ? and "folder" = ?
		order by %s %s
		limit ? offset ? ;
	`, column, order)

	offset := (page - 1) * limit

	emails := []models.Email{}
	if err := s.db.SelectContext(ctx, &emails, query, accountID, folder, limit, offset); err != nil {
		return nil, 0, err
	}

	return emails, total, nil
}

// Search returns one page of messages matching the query as a substring of
// subject, snippet, sender address, sender name or body text. Matching is
// delegated to sqlite LIKE, which is case-insensitive for ASCII.
func (s *EmailStore) Search(ctx context.Context, accountID int64, q string, page, limit int) ([]models.Email, int64, error) {
	pattern := "%" + q + "%"

	const where = `
		where "account_id" = ?
		  and (
			"subject" like ? or
			"snippet" like ? or
			"sender_email" like ? or
			"sender_name" like ? or
			"body_text" like ?
		  )
	`

	countQuery := `select count(*) from "emails" ` + where + ` ;`

	args := []interface{}{accountID, pattern, pattern, pattern, pattern, pattern}

	var total int64
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := `
		select ` + listColumns + `
		from "emails" ` + where + `
		order by "received_at" desc
		limit ? offset ? ;
	`

	offset := (page - 1) * limit
	args = append(args, limit, offset)

	emails := []models.Email{}
	if err := s.db.SelectContext(ctx, &emails, query, args...); err != nil {
		return nil, 0, err
	}

	return emails, total, nil
}

// GetByID returns the full message row, including the body columns.
func (s *EmailStore) GetByID(ctx context.Context, accountID, id int64) (*models.Email, error) {
	const query = `
		select *
		from "emails"
		where "id" = ? and "account_id" = ? ;
	`

	var email models.Email
	if err := s.db.GetContext(ctx, &email, query, id, accountID); err != nil {
		if IsErrNoRows(err) {
			return nil, utils.NotFoundError("email not found", err)
		}
		return nil, err
	}

	return &email, nil
}

// MarkRead sets the read flag and reports whether a row was affected.
// Marking an already read message again still reports true.
func (s *EmailStore) MarkRead(ctx context.Context, accountID, id int64) (bool, error) {
	const query = `
		update "emails"
		set "is_read" = 1 , "updated_at" = current_timestamp
		where "id" = ? and "account_id" = ? ;
	`

	result, err := s.db.ExecContext(ctx, query, id, accountID)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// ToggleStar flips the starred flag and returns the updated row.
func (s *EmailStore) ToggleStar(ctx context.Context, accountID, id int64) (*models.Email, error) {
	const query = `
		update "emails"
		set "is_starred" = 1 - "is_starred" , "updated_at" = current_timestamp
		where "id" = ? and "account_id" = ? ;
	`

	result, err := s.db.ExecContext(ctx, query, id, accountID)
	if err != nil {
		return nil, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, utils.NotFoundError("email not found", nil)
	}

	return s.GetByID(ctx, accountID, id)
}

// FolderStats aggregates total and unread counts per folder.
func (s *EmailStore) FolderStats(ctx context.Context, accountID int64) ([]models.FolderStat, error) {
	const query = `
		select "folder" ,
		       count(*) as "total" ,
		       sum(case when "is_read" = 0 then 1 else 0 end) as "unread"
		from "emails"
		where "account_id" = ?
		group by "folder" ;
	`

	stats := []models.FolderStat{}
	if err := s.db.SelectContext(ctx, &stats, query, accountID); err != nil {
		return nil, err
	}

	return stats, nil
}

// CountStats returns the totals shown on the user statistics endpoint.
func (s *EmailStore) CountStats(ctx context.Context, accountID int64) (total, unread, starred int64, err error) {
	const query = `
		select count(*) ,
		       coalesce(sum(case when "is_read" = 0 then 1 else 0 end), 0) ,
		       coalesce(sum(case when "is_starred" = 1 then 1 else 0 end), 0)
		from "emails"
		where "account_id" = ? ;
	`

	row := s.db.QueryRowContext(ctx, query, accountID)
	if err := row.Scan(&total, &unread, &starred); err != nil {
		return 0, 0, 0, err
	}

	return total, unread, starred, nil
}
