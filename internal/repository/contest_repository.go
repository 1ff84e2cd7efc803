package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"contesthub/internal/model"
)

type contestRepository struct {
	db *gorm.DB
}

// NewContestRepository creates a new contest repository.
func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

func orderSubmissions(db *gorm.DB) *gorm.DB {
	return db.Order("submitted_at")
}

// Create creates a new contest.
func (r *contestRepository) Create(ctx context.Context, contest *model.Contest) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(contest).Error)
}

// FindByID loads a contest with its participants and submissions.
func (r *contestRepository) FindByID(ctx context.Context, id string) (*model.Contest, error) {
	var contest model.Contest
	err := r.db.WithContext(ctx).Preload("Submissions", orderSubmissions).
		Where("id = ?", id).First(&contest).Error
	if err != nil {
		return nil, translate(err)
	}
	contests := []model.Contest{contest}
	if err := r.attachParticipants(ctx, contests); err != nil {
		return nil, err
	}
	return &contests[0], nil
}

// List returns contests matching filter, newest first.
func (r *contestRepository) List(ctx context.Context, filter model.ContestFilter) ([]model.Contest, error) {
	q := r.db.WithContext(ctx).Model(&model.Contest{}).Preload("Submissions", orderSubmissions)

	if filter.CreatorEmail != "" {
		q = q.Where("creator_email = ?", filter.CreatorEmail)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		q = q.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(category) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", like, like, like)
	}
	if filter.Participant != "" {
		sub := r.db.Model(&model.Participant{}).Select("contest_id").Where("email = ?", filter.Participant)
		q = q.Where("id IN (?)", sub)
	}
	if filter.Winner != "" {
		sub := r.db.Model(&model.Submission{}).Select("contest_id").
			Where("email = ? AND status = ?", filter.Winner, model.SubmissionWinner)
		q = q.Where("id IN (?)", sub)
	}

	var contests []model.Contest
	if err := q.Order("created_at DESC").Find(&contests).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.attachParticipants(ctx, contests); err != nil {
		return nil, err
	}
	return contests, nil
}

// likeEscaper makes LIKE wildcards literal under ESCAPE '!', which reads the same in
// MySQL and PostgreSQL.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern is a case-folded substring pattern for search.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}

func (r *contestRepository) attachParticipants(ctx context.Context, contests []model.Contest) error {
	if len(contests) == 0 {
		return nil
	}
	ids := make([]string, len(contests))
	for i := range contests {
		ids[i] = contests[i].ID
		contests[i].Participants = []string{}
		if contests[i].Submissions == nil {
			contests[i].Submissions = []model.Submission{}
		}
	}

	var rows []model.Participant
	if err := r.db.WithContext(ctx).Where("contest_id IN ?", ids).Order("joined_at").Find(&rows).Error; err != nil {
		return translate(err)
	}
	byContest := make(map[string][]string, len(contests))
	for _, p := range rows {
		byContest[p.ContestID] = append(byContest[p.ContestID], p.Email)
	}
	for i := range contests {
		if emails, ok := byContest[contests[i].ID]; ok {
			contests[i].Participants = emails
		}
	}
	return nil
}

// CountByCreator counts contests owned by email.
func (r *contestRepository) CountByCreator(ctx context.Context, email string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Contest{}).Where("creator_email = ?", email).Count(&n).Error
	return n, translate(err)
}

// ReplaceContent overwrites every creator-editable field with the values on contest.
// The write only lands while the contest is pending and still owned by
// contest.CreatorEmail; otherwise it fails with ErrConflict.
func (r *contestRepository) ReplaceContent(ctx context.Context, contest *model.Contest) error {
	res := r.db.WithContext(ctx).Model(&model.Contest{}).
		Where("id = ? AND status = ? AND creator_email = ?", contest.ID, model.ContestStatusPending, contest.CreatorEmail).
		Updates(map[string]interface{}{
			"title":            contest.Title,
			"description":      contest.Description,
			"category":         contest.Category,
			"image":            contest.Image,
			"price":            contest.Price,
			"prize_money":      contest.PrizeMoney,
			"task_instruction": contest.TaskInstruction,
			"end_date":         contest.EndDate,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if err := r.exists(ctx, contest.ID); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// ApplyPatch writes only the fields present on patch.
func (r *contestRepository) ApplyPatch(ctx context.Context, id string, patch model.ContestPatch) error {
	fields := patchColumns(patch)
	if len(fields) == 0 {
		return r.exists(ctx, id)
	}
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&model.Contest{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return r.exists(ctx, id)
	}
	return nil
}

func patchColumns(p model.ContestPatch) map[string]interface{} {
	fields := map[string]interface{}{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Image != nil {
		fields["image"] = *p.Image
	}
	if p.Price != nil {
		fields["price"] = *p.Price
	}
	if p.PrizeMoney != nil {
		fields["prize_money"] = *p.PrizeMoney
	}
	if p.TaskInstruction != nil {
		fields["task_instruction"] = *p.TaskInstruction
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.EndDate != nil {
		fields["end_date"] = *p.EndDate
	}
	if p.IsActive != nil {
		fields["is_active"] = *p.IsActive
	}
	return fields
}

// TransitionStatus moves a contest from one status to another, failing with ErrConflict
// if it is no longer in the from status.
func (r *contestRepository) TransitionStatus(ctx context.Context, id string, from, to model.ContestStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Contest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if err := r.exists(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// Delete removes a contest with its participants and submissions.
func (r *contestRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contest_id = ?", id).Delete(&model.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("contest_id = ?", id).Delete(&model.Participant{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Contest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return translate(err)
}

// AddParticipant inserts a participant row; the composite primary key rejects repeats.
func (r *contestRepository) AddParticipant(ctx context.Context, id, email string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := existsIn(tx, id); err != nil {
			return err
		}
		row := &model.Participant{ContestID: id, Email: email, JoinedAt: time.Now()}
		return translate(tx.Create(row).Error)
	})
	return translate(err)
}

// AddSubmission appends a submission to a contest.
func (r *contestRepository) AddSubmission(ctx context.Context, id string, submission *model.Submission) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := existsIn(tx, id); err != nil {
			return err
		}
		submission.ContestID = id
		return translate(tx.Create(submission).Error)
	})
	return translate(err)
}

// DeclareWinner flags every submission by email as winning, holding a lock on the
// contest row so two declarations cannot both see "no winner yet".
func (r *contestRepository) DeclareWinner(ctx context.Context, id, email string) (int64, error) {
	var flagged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contest model.Contest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").
			Where("id = ?", id).First(&contest).Error; err != nil {
			return translate(err)
		}

		var winners int64
		if err := tx.Model(&model.Submission{}).
			Where("contest_id = ? AND status = ?", id, model.SubmissionWinner).
			Count(&winners).Error; err != nil {
			return err
		}
		if winners > 0 {
			return ErrConflict
		}

		res := tx.Model(&model.Submission{}).
			Where("contest_id = ? AND email = ?", id, email).
			Update("status", model.SubmissionWinner)
		if res.Error != nil {
			return translate(res.Error)
		}
		flagged = res.RowsAffected
		return nil
	})
	return flagged, translate(err)
}

// WinCounts aggregates winning submissions per email, most wins first.
func (r *contestRepository) WinCounts(ctx context.Context) ([]model.WinCount, error) {
	var rows []model.WinCount
	err := r.db.WithContext(ctx).Model(&model.Submission{}).
		Select("email, COUNT(*) AS points").
		Where("status = ?", model.SubmissionWinner).
		Group("email").
		Order("points DESC").Order("email").
		Scan(&rows).Error
	return rows, translate(err)
}

func (r *contestRepository) exists(ctx context.Context, id string) error {
	return existsIn(r.db.WithContext(ctx), id)
}

func existsIn(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&model.Contest{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
