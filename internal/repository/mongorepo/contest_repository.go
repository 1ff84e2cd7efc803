package mongorepo

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"contesthub/internal/model"
	"contesthub/internal/repository"
)

type contestRepository struct {
	coll *mongo.Collection
}

// NewContestRepository builds a MongoDB-backed contest repository.
func NewContestRepository(db *mongo.Database) repository.ContestRepository {
	return &contestRepository{coll: collection(db, contestsCollection)}
}

func normalize(c *model.Contest) {
	if c.Participants == nil {
		c.Participants = []string{}
	}
	if c.Submissions == nil {
		c.Submissions = []model.Submission{}
	}
	for i := range c.Submissions {
		c.Submissions[i].ContestID = c.ID
	}
}

// Create inserts the contest. Embedded arrays are written as empty arrays so later
// $push and $addToSet updates have a target.
func (r *contestRepository) Create(ctx context.Context, contest *model.Contest) error {
	if contest.ID == "" {
		contest.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	contest.CreatedAt, contest.UpdatedAt = now, now
	normalize(contest)
	_, err := r.coll.InsertOne(ctx, contest)
	return translate(err)
}

func (r *contestRepository) FindByID(ctx context.Context, id string) (*model.Contest, error) {
	var contest model.Contest
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&contest); err != nil {
		return nil, translate(err)
	}
	normalize(&contest)
	return &contest, nil
}

func (r *contestRepository) List(ctx context.Context, filter model.ContestFilter) ([]model.Contest, error) {
	q := bson.M{}
	if filter.CreatorEmail != "" {
		q["creator_email"] = filter.CreatorEmail
	}
	if filter.Category != "" {
		q["category"] = filter.Category
	}
	if filter.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		q["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"category": pattern},
			bson.M{"description": pattern},
		}
	}
	if filter.Participant != "" {
		q["participants"] = filter.Participant
	}
	if filter.Winner != "" {
		q["submissions"] = bson.M{"$elemMatch": bson.M{"email": filter.Winner, "status": model.SubmissionWinner}}
	}

	cur, err := r.coll.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, translate(err)
	}
	contests := []model.Contest{}
	if err := cur.All(ctx, &contests); err != nil {
		return nil, translate(err)
	}
	for i := range contests {
		normalize(&contests[i])
	}
	return contests, nil
}

func (r *contestRepository) CountByCreator(ctx context.Context, email string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"creator_email": email})
	return n, translate(err)
}

// ReplaceContent only matches a pending contest still owned by contest.CreatorEmail;
// a contest that moved on in between yields ErrConflict.
func (r *contestRepository) ReplaceContent(ctx context.Context, contest *model.Contest) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": contest.ID, "status": model.ContestStatusPending, "creator_email": contest.CreatorEmail},
		bson.M{"$set": bson.M{
			"title":            contest.Title,
			"description":      contest.Description,
			"category":         contest.Category,
			"image":            contest.Image,
			"price":            contest.Price,
			"prize_money":      contest.PrizeMoney,
			"task_instruction": contest.TaskInstruction,
			"end_date":         contest.EndDate,
			"updated_at":       time.Now().UTC(),
		}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		if err := r.exists(ctx, contest.ID); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	return nil
}

func (r *contestRepository) ApplyPatch(ctx context.Context, id string, patch model.ContestPatch) error {
	fields := bson.M{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Image != nil {
		fields["image"] = *patch.Image
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.PrizeMoney != nil {
		fields["prize_money"] = *patch.PrizeMoney
	}
	if patch.TaskInstruction != nil {
		fields["task_instruction"] = *patch.TaskInstruction
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.EndDate != nil {
		fields["end_date"] = *patch.EndDate
	}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}
	if len(fields) == 0 {
		return r.exists(ctx, id)
	}
	return r.set(ctx, id, fields)
}

func (r *contestRepository) set(ctx context.Context, id string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *contestRepository) TransitionStatus(ctx context.Context, id string, from, to model.ContestStatus) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		if err := r.exists(ctx, id); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	return nil
}

func (r *contestRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddParticipant appends email unless it is already present; the $ne guard makes the
// check and the write a single atomic operation.
func (r *contestRepository) AddParticipant(ctx context.Context, id, email string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "participants": bson.M{"$ne": email}},
		bson.M{"$addToSet": bson.M{"participants": email}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		if err := r.exists(ctx, id); err != nil {
			return err
		}
		return repository.ErrDuplicate
	}
	return nil
}

func (r *contestRepository) AddSubmission(ctx context.Context, id string, submission *model.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	submission.ContestID = id
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"submissions": submission}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeclareWinner flags the user's submissions in one conditional update that only
// matches while no submission of the contest is a winner yet.
func (r *contestRepository) DeclareWinner(ctx context.Context, id, email string) (int64, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{
			"_id":                id,
			"submissions.status": bson.M{"$ne": model.SubmissionWinner},
			"submissions.email":  email,
		},
		bson.M{"$set": bson.M{"submissions.$[s].status": model.SubmissionWinner}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"s.email": email}},
		}),
	)
	if err != nil {
		return 0, translate(err)
	}
	if res.MatchedCount > 0 {
		return res.ModifiedCount, nil
	}

	contest, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, translate(err)
	}
	if contest.HasWinner() {
		return 0, repository.ErrConflict
	}
	return 0, nil
}

func (r *contestRepository) WinCounts(ctx context.Context) ([]model.WinCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$submissions"}},
		{{Key: "$match", Value: bson.M{"submissions.status": model.SubmissionWinner}}},
		{{Key: "$group", Value: bson.M{"_id": "$submissions.email", "points": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "points", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err)
	}
	rows := []model.WinCount{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *contestRepository) exists(ctx context.Context, id string) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
