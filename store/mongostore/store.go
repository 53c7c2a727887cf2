// Package mongostore is the MongoDB Record Store. Users embed their enrollments
// and progress, so every invariant-carrying mutation is one conditional
// update on a single user document.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"coursemaster/models"
	"coursemaster/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection       = "users"
	coursesCollection     = "courses"
	intentsCollection     = "checkoutIntents"
	submissionsCollection = "assignmentSubmissions"
)

type Store struct {
	client      *mongo.Client
	users       *mongo.Collection
	courses     *mongo.Collection
	intents     *mongo.Collection
	submissions *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Connect dials uri, pings the deployment and ensures the indexes the store
// depends on.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := New(client, dbName)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func New(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		client:      client,
		users:       db.Collection(usersCollection),
		courses:     db.Collection(coursesCollection),
		intents:     db.Collection(intentsCollection),
		submissions: db.Collection(submissionsCollection),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	_, err = s.submissions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "courseId", Value: 1},
			{Key: "milestoneIndex", Value: 1},
			{Key: "moduleIndex", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("submissions module index: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	}
	return err
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	doc := userDoc{
		Name:             u.Name,
		Email:            u.Email,
		Phone:            u.Phone,
		Avatar:           u.Avatar,
		Password:         u.Password,
		Roles:            string(u.Role),
		Status:           u.Status,
		PurchasedCourses: []purchasedCourseDoc{},
		CreatedAt:        u.CreatedAt,
	}
	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		return translate(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid.Hex()
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	u := doc.toModel()
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, email string, update models.ProfileUpdate) error {
	set := bson.M{}
	if update.Name != "" {
		set["name"] = update.Name
	}
	if update.Phone != "" {
		set["phone"] = update.Phone
	}
	if update.Avatar != "" {
		set["avatar"] = update.Avatar
	}

	if len(set) == 0 {
		n, err := s.users.CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) FindStudentsForCourse(ctx context.Context, courseID string) ([]models.User, error) {
	oid, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return []models.User{}, nil
	}
	cur, err := s.users.Find(ctx,
		bson.M{"purchasedCourses.courseId": oid},
		options.Find().SetProjection(bson.M{"password": 0}).SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	students := make([]models.User, 0, len(docs))
	for _, d := range docs {
		students = append(students, d.toModel())
	}
	return students, nil
}

// ---- courses ----

func (s *Store) CreateCourse(ctx context.Context, c *models.Course) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	doc := courseDoc{
		Title:       c.Title,
		Description: c.Description,
		Instructor:  c.Instructor,
		Price:       c.Price,
		Category:    c.Category,
		Tags:        tags,
		Image:       c.Image,
		Syllabus:    c.Syllabus,
		Milestones:  c.Milestones,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
	}
	res, err := s.courses.InsertOne(ctx, doc)
	if err != nil {
		return translate(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}
	return nil
}

func (s *Store) FindCourseByID(ctx context.Context, id string) (*models.Course, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	var doc courseDoc
	if err := s.courses.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	c := doc.toModel()
	return &c, nil
}

func (s *Store) FindCourses(ctx context.Context, q models.CourseQuery) ([]models.Course, int64, error) {
	filter := bson.M{}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"instructor": pattern},
		}
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if len(q.Tags) > 0 {
		filter["tags"] = bson.M{"$in": q.Tags}
	}

	total, err := s.courses.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sort := bson.D{}
	switch q.Sort {
	case models.SortPriceAsc:
		sort = append(sort, bson.E{Key: "price", Value: 1})
	case models.SortPriceDesc:
		sort = append(sort, bson.E{Key: "price", Value: -1})
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})

	opts := options.Find().SetSort(sort)
	if q.Limit > 0 {
		opts.SetSkip(int64(q.Offset())).SetLimit(int64(q.Limit))
	}
	cur, err := s.courses.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []courseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	courses := make([]models.Course, 0, len(docs))
	for _, d := range docs {
		courses = append(courses, d.toModel())
	}
	return courses, total, nil
}

// ---- enrollment ----

func (s *Store) AddPurchasedCourse(ctx context.Context, email, courseID string) (models.EnrollOutcome, error) {
	oid, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return models.EnrollNoopInvalidMetadata, nil
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": email, "purchasedCourses.courseId": bson.M{"$ne": oid}},
		bson.M{"$push": bson.M{"purchasedCourses": purchasedCourseDoc{CourseID: oid, CompletedModules: []int{}}}},
	)
	if err != nil {
		return "", err
	}
	if res.ModifiedCount == 1 {
		return models.EnrollApplied, nil
	}

	// The guard failed: either no such user or the course is already there.
	n, err := s.users.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return "", err
	}
	if n == 0 {
		return models.EnrollNoopNotFound, nil
	}
	return models.EnrollNoopAlreadyEnrolled, nil
}

func (s *Store) SaveCheckoutIntent(ctx context.Context, intent models.CheckoutIntent) error {
	_, err := s.intents.InsertOne(ctx, intentDoc{
		SessionID: intent.SessionID,
		CourseID:  intent.CourseID,
		UserEmail: intent.UserEmail,
		Amount:    intent.Amount,
		Currency:  intent.Currency,
		CreatedAt: intent.CreatedAt,
	})
	return translate(err)
}

func (s *Store) FindCheckoutIntent(ctx context.Context, sessionID string) (*models.CheckoutIntent, error) {
	var doc intentDoc
	if err := s.intents.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return &models.CheckoutIntent{
		SessionID: doc.SessionID,
		CourseID:  doc.CourseID,
		UserEmail: doc.UserEmail,
		Amount:    doc.Amount,
		Currency:  doc.Currency,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// ---- progress ----

func (s *Store) CompleteModule(ctx context.Context, email, courseID string, moduleIndex int) (models.CompletionOutcome, error) {
	oid, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return models.CompletionNoopNotEnrolled, nil
	}
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": email, "purchasedCourses.courseId": oid},
		bson.M{"$addToSet": bson.M{"purchasedCourses.$.completedModules": moduleIndex}},
	)
	if err != nil {
		return "", err
	}
	switch {
	case res.MatchedCount == 0:
		return models.CompletionNoopNotEnrolled, nil
	case res.ModifiedCount == 0:
		return models.CompletionNoopAlreadyComplete, nil
	}
	return models.CompletionApplied, nil
}

func (s *Store) SetAssignmentMark(ctx context.Context, email, courseID string, milestoneIndex, moduleIndex int, mark float64) error {
	if !s.ValidID(courseID) {
		return fmt.Errorf("invalid course id %q", courseID)
	}
	path := "assignmentMarks." + courseID + "." + strconv.Itoa(milestoneIndex) + "." + strconv.Itoa(moduleIndex)
	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{path: mark}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SaveMcqResult drops any result for the same question and appends the new
// one in a single pipeline update.
func (s *Store) SaveMcqResult(ctx context.Context, email string, result models.McqResult) error {
	entry := mcqResultDoc{
		CourseID:      result.CourseID,
		ModuleIndex:   result.ModuleIndex,
		QuestionIndex: result.QuestionIndex,
		IsCorrect:     result.IsCorrect,
		SavedAt:       result.SavedAt,
	}
	sameQuestion := bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$$r.courseId", bson.D{{Key: "$literal", Value: result.CourseID}}}}},
		bson.D{{Key: "$eq", Value: bson.A{"$$r.moduleIndex", result.ModuleIndex}}},
		bson.D{{Key: "$eq", Value: bson.A{"$$r.questionIndex", result.QuestionIndex}}},
	}}}
	kept := bson.D{{Key: "$filter", Value: bson.D{
		{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$mcqResults", bson.A{}}}}},
		{Key: "as", Value: "r"},
		{Key: "cond", Value: bson.D{{Key: "$not", Value: bson.A{sameQuestion}}}},
	}}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "mcqResults", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
			kept,
			bson.A{bson.D{{Key: "$literal", Value: entry}}},
		}}}}}}},
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, pipeline)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ---- assignment submissions ----

func (s *Store) CreateSubmission(ctx context.Context, sub *models.AssignmentSubmission) error {
	courseOID, err := primitive.ObjectIDFromHex(sub.CourseID)
	if err != nil {
		return fmt.Errorf("invalid course id %q", sub.CourseID)
	}
	res, err := s.submissions.InsertOne(ctx, submissionDoc{
		CourseID:       courseOID,
		MilestoneIndex: sub.MilestoneIndex,
		ModuleIndex:    sub.ModuleIndex,
		StudentEmail:   sub.StudentEmail,
		StudentName:    sub.StudentName,
		SubmissionText: sub.SubmissionText,
		SubmittedAt:    sub.SubmittedAt,
	})
	if err != nil {
		return translate(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		sub.ID = oid.Hex()
	}
	return nil
}

func submissionFilter(key models.SubmissionKey) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(key.CourseID)
	if err != nil {
		return nil, false
	}
	return bson.M{
		"courseId":       oid,
		"milestoneIndex": key.MilestoneIndex,
		"moduleIndex":    key.ModuleIndex,
	}, true
}

func (s *Store) FindSubmission(ctx context.Context, key models.SubmissionKey, email string) (*models.AssignmentSubmission, error) {
	filter, ok := submissionFilter(key)
	if !ok {
		return nil, store.ErrNotFound
	}
	filter["studentEmail"] = email

	var doc submissionDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "submittedAt", Value: -1}})
	if err := s.submissions.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	sub := doc.toModel()
	return &sub, nil
}

func (s *Store) FindSubmissions(ctx context.Context, key models.SubmissionKey) ([]models.AssignmentSubmission, error) {
	filter, ok := submissionFilter(key)
	if !ok {
		return []models.AssignmentSubmission{}, nil
	}
	cur, err := s.submissions.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []submissionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	subs := make([]models.AssignmentSubmission, 0, len(docs))
	for _, d := range docs {
		subs = append(subs, d.toModel())
	}
	return subs, nil
}

func (s *Store) FindSubmissionsByCourse(ctx context.Context) ([]models.CourseSubmissions, error) {
	cur, err := s.submissions.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "submittedAt", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$courseId"},
			{Key: "submissions", Value: bson.D{{Key: "$push", Value: "$$ROOT"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, err
	}
	var grouped []struct {
		CourseID    primitive.ObjectID `bson:"_id"`
		Submissions []submissionDoc    `bson:"submissions"`
	}
	if err := cur.All(ctx, &grouped); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(grouped))
	for _, g := range grouped {
		ids = append(ids, g.CourseID)
	}
	titles := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) > 0 {
		cur, err := s.courses.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
			options.Find().SetProjection(bson.M{"title": 1}))
		if err != nil {
			return nil, err
		}
		var docs []courseDoc
		if err := cur.All(ctx, &docs); err != nil {
			return nil, err
		}
		for _, d := range docs {
			titles[d.ID] = d.Title
		}
	}

	result := make([]models.CourseSubmissions, 0, len(grouped))
	for _, g := range grouped {
		title, ok := titles[g.CourseID]
		if !ok {
			title = "Unknown"
		}
		subs := make([]models.AssignmentSubmission, 0, len(g.Submissions))
		for _, d := range g.Submissions {
			subs = append(subs, d.toModel())
		}
		result = append(result, models.CourseSubmissions{
			CourseID:    g.CourseID.Hex(),
			CourseTitle: title,
			Submissions: subs,
		})
	}
	return result, nil
}
