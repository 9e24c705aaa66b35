package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/HammerMeetNail/butterfly/internal/models"
)

var ErrInvalidPage = errors.New("invalid page")

const DefaultDirectoryPageSize = 10

type DirectoryService struct {
	db       DB
	pageSize int
}

func NewDirectoryService(db DB, pageSize int) *DirectoryService {
	if pageSize <= 0 {
		pageSize = DefaultDirectoryPageSize
	}
	return &DirectoryService{db: db, pageSize: pageSize}
}

// searchTerms splits on whitespace and commas.
func searchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildDirectoryFilter returns a WHERE clause requiring every term to occur
// in the email or the name, plus its arguments.
func buildDirectoryFilter(search string) (string, []any) {
	terms := searchTerms(search)
	if len(terms) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms))
	for i, term := range terms {
		args = append(args, "%"+likeEscaper.Replace(term)+"%")
		clauses = append(clauses, fmt.Sprintf("(email ILIKE $%d OR name ILIKE $%d)", i+1, i+1))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Search returns one page of users ordered by name descending. Page 1 is
// always valid, even when nothing matches.
func (s *DirectoryService) Search(ctx context.Context, q models.DirectoryQuery) (*models.DirectoryPage, error) {
	page := q.Page
	if page == 0 {
		page = 1
	}
	if page < 0 {
		return nil, ErrInvalidPage
	}

	where, args := buildDirectoryFilter(q.Search)

	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&count); err != nil {
		return nil, fmt.Errorf("counting directory entries: %w", err)
	}

	if page > 1 && (page-1)*s.pageSize >= count {
		return nil, ErrInvalidPage
	}

	n := len(args)
	pageArgs := append(append([]any{}, args...), s.pageSize, (page-1)*s.pageSize)
	rows, err := s.db.Query(ctx,
		fmt.Sprintf(`SELECT id, email FROM users%s ORDER BY name DESC, id LIMIT $%d OFFSET $%d`, where, n+1, n+2),
		pageArgs...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing directory entries: %w", err)
	}
	defer rows.Close()

	results := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Email); err != nil {
			return nil, fmt.Errorf("scanning directory entry: %w", err)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating directory entries: %w", err)
	}

	return &models.DirectoryPage{
		Count:    count,
		Page:     page,
		PageSize: s.pageSize,
		Results:  results,
	}, nil
}
