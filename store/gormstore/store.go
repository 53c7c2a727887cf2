package gormstore

import (
	"context"
	"errors"
	"strings"

	"coursemaster/models"
	"coursemaster/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the relational Record Store (postgres, mysql or sqlite).
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// likeEscaper makes a search term match literally inside LIKE ... ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates every table owned by the store.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userRow{},
		&courseRow{},
		&courseTagRow{},
		&enrollmentRow{},
		&moduleCompletionRow{},
		&assignmentMarkRow{},
		&mcqResultRow{},
		&checkoutIntentRow{},
		&submissionRow{},
	)
}

func (s *Store) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	}
	return err
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row := userRow{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Avatar:    u.Avatar,
		Password:  u.Password,
		Role:      string(u.Role),
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	u.CreatedAt = row.CreatedAt
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return s.hydrateUser(ctx, row)
}

func (s *Store) UpdateProfile(ctx context.Context, email string, update models.ProfileUpdate) error {
	exists, err := s.userExists(s.db.WithContext(ctx), email)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	if update.Empty() {
		return nil
	}
	changes := map[string]interface{}{}
	if update.Name != "" {
		changes["name"] = update.Name
	}
	if update.Phone != "" {
		changes["phone"] = update.Phone
	}
	if update.Avatar != "" {
		changes["avatar"] = update.Avatar
	}
	return s.db.WithContext(ctx).Model(&userRow{}).Where("email = ?", email).Updates(changes).Error
}

func (s *Store) FindStudentsForCourse(ctx context.Context, courseID string) ([]models.User, error) {
	db := s.db.WithContext(ctx)
	enrolled := db.Model(&enrollmentRow{}).Select("user_email").Where("course_id = ?", courseID)

	var rows []userRow
	if err := db.Where("email IN (?)", enrolled).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	students := make([]models.User, 0, len(rows))
	for _, row := range rows {
		u, err := s.hydrateUser(ctx, row)
		if err != nil {
			return nil, err
		}
		students = append(students, *u)
	}
	return students, nil
}

func (s *Store) userExists(db *gorm.DB, email string) (bool, error) {
	var count int64
	if err := db.Model(&userRow{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// hydrateUser assembles the document-shaped user from its progress tables.
func (s *Store) hydrateUser(ctx context.Context, row userRow) (*models.User, error) {
	db := s.db.WithContext(ctx)
	u := row.toModel()

	var enrollments []enrollmentRow
	if err := db.Where("user_email = ?", row.Email).Order("id").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	var completions []moduleCompletionRow
	if err := db.Where("user_email = ?", row.Email).Order("module_index").Find(&completions).Error; err != nil {
		return nil, err
	}
	completed := make(map[string][]int)
	for _, c := range completions {
		completed[c.CourseID] = append(completed[c.CourseID], c.ModuleIndex)
	}
	for _, e := range enrollments {
		modules := completed[e.CourseID]
		if modules == nil {
			modules = []int{}
		}
		u.PurchasedCourses = append(u.PurchasedCourses, models.PurchasedCourse{
			CourseID:         e.CourseID,
			CompletedModules: modules,
		})
	}

	var marks []assignmentMarkRow
	if err := db.Where("user_email = ?", row.Email).Find(&marks).Error; err != nil {
		return nil, err
	}
	if len(marks) > 0 {
		u.AssignmentMarks = models.AssignmentMarks{}
		for _, m := range marks {
			u.AssignmentMarks.Set(m.CourseID, m.MilestoneIndex, m.ModuleIndex, m.Mark)
		}
	}

	var results []mcqResultRow
	if err := db.Where("user_email = ?", row.Email).Order("saved_at, id").Find(&results).Error; err != nil {
		return nil, err
	}
	for _, r := range results {
		u.McqResults = append(u.McqResults, models.McqResult{
			CourseID:      r.CourseID,
			ModuleIndex:   r.ModuleIndex,
			QuestionIndex: r.QuestionIndex,
			IsCorrect:     r.IsCorrect,
			SavedAt:       r.SavedAt,
		})
	}
	return &u, nil
}

// ---- courses ----

func (s *Store) CreateCourse(ctx context.Context, c *models.Course) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := courseRowFromModel(c)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	c.CreatedAt = row.CreatedAt
	return nil
}

func (s *Store) FindCourseByID(ctx context.Context, id string) (*models.Course, error) {
	var row courseRow
	if err := s.db.WithContext(ctx).Preload("Tags").Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	c := row.toModel()
	return &c, nil
}

func (s *Store) FindCourses(ctx context.Context, q models.CourseQuery) ([]models.Course, int64, error) {
	filtered := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&courseRow{})
		if search := strings.TrimSpace(q.Search); search != "" {
			like := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
			db = db.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(instructor) LIKE ? ESCAPE '!'", like, like)
		}
		if q.Category != "" {
			db = db.Where("category = ?", q.Category)
		}
		if len(q.Tags) > 0 {
			tagged := s.db.Model(&courseTagRow{}).Select("course_id").Where("tag IN ?", q.Tags)
			db = db.Where("id IN (?)", tagged)
		}
		return db
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listing := filtered().Preload("Tags")
	switch q.Sort {
	case models.SortPriceAsc:
		listing = listing.Order("price asc")
	case models.SortPriceDesc:
		listing = listing.Order("price desc")
	}
	listing = listing.Order("created_at asc")
	if q.Limit > 0 {
		listing = listing.Offset(q.Offset()).Limit(q.Limit)
	}

	var rows []courseRow
	if err := listing.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toModel())
	}
	return courses, total, nil
}

// ---- enrollment ----

func (s *Store) AddPurchasedCourse(ctx context.Context, email, courseID string) (models.EnrollOutcome, error) {
	db := s.db.WithContext(ctx)
	exists, err := s.userExists(db, email)
	if err != nil {
		return "", err
	}
	if !exists {
		return models.EnrollNoopNotFound, nil
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollmentRow{
		UserEmail: email,
		CourseID:  courseID,
	})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return models.EnrollNoopAlreadyEnrolled, nil
	}
	return models.EnrollApplied, nil
}

func (s *Store) SaveCheckoutIntent(ctx context.Context, intent models.CheckoutIntent) error {
	row := checkoutIntentRow{
		SessionID: intent.SessionID,
		CourseID:  intent.CourseID,
		UserEmail: intent.UserEmail,
		Amount:    intent.Amount,
		Currency:  intent.Currency,
		CreatedAt: intent.CreatedAt,
	}
	return translate(s.db.WithContext(ctx).Create(&row).Error)
}

func (s *Store) FindCheckoutIntent(ctx context.Context, sessionID string) (*models.CheckoutIntent, error) {
	var row checkoutIntentRow
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	intent := row.toModel()
	return &intent, nil
}

// ---- progress ----

func (s *Store) CompleteModule(ctx context.Context, email, courseID string, moduleIndex int) (models.CompletionOutcome, error) {
	db := s.db.WithContext(ctx)

	// Enrollment is terminal, so an existence check cannot race with removal.
	var enrolled int64
	if err := db.Model(&enrollmentRow{}).Where("user_email = ? AND course_id = ?", email, courseID).Count(&enrolled).Error; err != nil {
		return "", err
	}
	if enrolled == 0 {
		return models.CompletionNoopNotEnrolled, nil
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&moduleCompletionRow{
		UserEmail:   email,
		CourseID:    courseID,
		ModuleIndex: moduleIndex,
	})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return models.CompletionNoopAlreadyComplete, nil
	}
	return models.CompletionApplied, nil
}

func (s *Store) SetAssignmentMark(ctx context.Context, email, courseID string, milestoneIndex, moduleIndex int, mark float64) error {
	db := s.db.WithContext(ctx)
	exists, err := s.userExists(db, email)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	row := assignmentMarkRow{
		UserEmail:      email,
		CourseID:       courseID,
		MilestoneIndex: milestoneIndex,
		ModuleIndex:    moduleIndex,
		Mark:           mark,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_email"}, {Name: "course_id"}, {Name: "milestone_index"}, {Name: "module_index"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"mark", "updated_at"}),
	}).Create(&row).Error
}

func (s *Store) SaveMcqResult(ctx context.Context, email string, result models.McqResult) error {
	db := s.db.WithContext(ctx)
	exists, err := s.userExists(db, email)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	row := mcqResultRow{
		UserEmail:     email,
		CourseID:      result.CourseID,
		ModuleIndex:   result.ModuleIndex,
		QuestionIndex: result.QuestionIndex,
		IsCorrect:     result.IsCorrect,
		SavedAt:       result.SavedAt,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_email"}, {Name: "course_id"}, {Name: "module_index"}, {Name: "question_index"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"is_correct", "saved_at"}),
	}).Create(&row).Error
}

// ---- assignment submissions ----

func (s *Store) CreateSubmission(ctx context.Context, sub *models.AssignmentSubmission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	row := submissionRow{
		ID:             sub.ID,
		CourseID:       sub.CourseID,
		MilestoneIndex: sub.MilestoneIndex,
		ModuleIndex:    sub.ModuleIndex,
		StudentEmail:   sub.StudentEmail,
		StudentName:    sub.StudentName,
		SubmissionText: sub.SubmissionText,
		SubmittedAt:    sub.SubmittedAt,
	}
	return translate(s.db.WithContext(ctx).Create(&row).Error)
}

func (s *Store) submissionsFor(ctx context.Context, key models.SubmissionKey) *gorm.DB {
	return s.db.WithContext(ctx).
		Where("course_id = ? AND milestone_index = ? AND module_index = ?", key.CourseID, key.MilestoneIndex, key.ModuleIndex)
}

func (s *Store) FindSubmission(ctx context.Context, key models.SubmissionKey, email string) (*models.AssignmentSubmission, error) {
	var row submissionRow
	err := s.submissionsFor(ctx, key).
		Where("student_email = ?", email).
		Order("submitted_at desc").
		First(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	sub := row.toModel()
	return &sub, nil
}

func (s *Store) FindSubmissions(ctx context.Context, key models.SubmissionKey) ([]models.AssignmentSubmission, error) {
	var rows []submissionRow
	if err := s.submissionsFor(ctx, key).Order("submitted_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	subs := make([]models.AssignmentSubmission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toModel())
	}
	return subs, nil
}

func (s *Store) FindSubmissionsByCourse(ctx context.Context) ([]models.CourseSubmissions, error) {
	db := s.db.WithContext(ctx)

	var rows []submissionRow
	if err := db.Order("course_id, submitted_at").Find(&rows).Error; err != nil {
		return nil, err
	}

	var groups []models.CourseSubmissions
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.CourseID]
		if !ok {
			i = len(groups)
			index[row.CourseID] = i
			groups = append(groups, models.CourseSubmissions{CourseID: row.CourseID, CourseTitle: "Unknown"})
		}
		groups[i].Submissions = append(groups[i].Submissions, row.toModel())
	}
	if len(groups) == 0 {
		return []models.CourseSubmissions{}, nil
	}

	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.CourseID)
	}
	var courses []courseRow
	if err := db.Select("id", "title").Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, err
	}
	for _, c := range courses {
		groups[index[c.ID]].CourseTitle = c.Title
	}
	return groups, nil
}
