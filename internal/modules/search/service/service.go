package search

import (
	"context"
	"encoding/json"
	"html"
	"strings"

	"anoa.com/elearning/internal/entity"
	"anoa.com/elearning/pkg/logger"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const courseIndex = "courses"

// CourseIndex keeps a full-text copy of the catalog for type-ahead lookups.
// It is never the source of truth for listings.
type CourseIndex interface {
	IndexCourse(ctx context.Context, course *entity.Course, teacherName, categoryName string) error
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error)
}

type Suggestion struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Teacher    string `json:"teacher"`
	Category   string `json:"category"`
	CategoryID string `json:"categoryId"`
	ImageURL   string `json:"imageUrl"`
}

type courseDoc struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	ShortDescription  string  `json:"short_description"`
	DetailDescription string  `json:"detail_description"`
	ImageURL          string  `json:"image_url"`
	Price             float64 `json:"price"`
	ViewCount         int64   `json:"view_count"`
	CreatedAt         int64   `json:"created_at"`
	CategoryID        string  `json:"category_id"`
	Category          string  `json:"category"`
	TeacherID         string  `json:"teacher_id"`
	Teacher           string  `json:"teacher"`
}

type meiliCourseIndex struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       *logger.Logger
}

func NewMeiliCourseIndex(client meilisearch.ServiceManager, log *logger.Logger) CourseIndex {
	if log == nil {
		log = logger.NewNop()
	}
	s := &meiliCourseIndex{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log.With("component", "search"),
	}
	s.initIndex()
	return s
}

func (s *meiliCourseIndex) initIndex() {
	filterable := []any{"category_id", "teacher_id"}
	if _, err := s.client.Index(courseIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.log.Warn("failed to update course filterable attributes", "error", err)
	}

	sortable := []string{"created_at", "view_count", "price"}
	if _, err := s.client.Index(courseIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.Warn("failed to update course sortable attributes", "error", err)
	}
}

func (s *meiliCourseIndex) IndexCourse(ctx context.Context, course *entity.Course, teacherName, categoryName string) error {
	doc := newCourseDoc(s.sanitizer, course, teacherName, categoryName)

	task, err := s.client.Index(courseIndex).AddDocumentsWithContext(ctx, []courseDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.log.Debug("indexed course", "course_id", course.ID, "task_uid", task.TaskUID)
	return nil
}

func (s *meiliCourseIndex) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Index(courseIndex).DeleteDocumentWithContext(ctx, id.String())
	return err
}

func (s *meiliCourseIndex) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	raw, err := s.client.Index(courseIndex).SearchRawWithContext(ctx, query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id", "name", "teacher", "category", "category_id", "image_url"},
	})
	if err != nil {
		return nil, err
	}
	return decodeSuggestions(*raw)
}

func decodeSuggestions(raw []byte) ([]Suggestion, error) {
	var resp struct {
		Hits []courseDoc `json:"hits"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		suggestions = append(suggestions, Suggestion{
			ID:         hit.ID,
			Name:       hit.Name,
			Teacher:    hit.Teacher,
			Category:   hit.Category,
			CategoryID: hit.CategoryID,
			ImageURL:   hit.ImageURL,
		})
	}
	return suggestions, nil
}

func newCourseDoc(sanitizer *bluemonday.Policy, course *entity.Course, teacherName, categoryName string) courseDoc {
	return courseDoc{
		ID:                course.ID.String(),
		Name:              course.Name,
		ShortDescription:  cleanContentForIndex(sanitizer, course.ShortDescription),
		DetailDescription: cleanContentForIndex(sanitizer, course.DetailDescription),
		ImageURL:          course.ImageURL,
		Price:             course.Price,
		ViewCount:         course.ViewCount,
		CreatedAt:         course.CreatedAt.Unix(),
		CategoryID:        course.CategoryID.String(),
		Category:          categoryName,
		TeacherID:         course.TeacherID.String(),
		Teacher:           teacherName,
	}
}

func cleanContentForIndex(sanitizer *bluemonday.Policy, content string) string {
	// keep words of adjacent blocks apart once the tags are gone
	for _, tag := range []string{"</p>", "<br>", "<br/>", "</div>", "</li>"} {
		content = strings.ReplaceAll(content, tag, " ")
	}

	cleanText := html.UnescapeString(sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(cleanText), " ")
}

func strPtr(s string) *string {
	return &s
}

type noopCourseIndex struct{}

// NewNoopCourseIndex is used when no search host is configured.
func NewNoopCourseIndex() CourseIndex {
	return noopCourseIndex{}
}

func (noopCourseIndex) IndexCourse(context.Context, *entity.Course, string, string) error {
	return nil
}

func (noopCourseIndex) DeleteCourse(context.Context, uuid.UUID) error {
	return nil
}

func (noopCourseIndex) Suggest(context.Context, string, int) ([]Suggestion, error) {
	return []Suggestion{}, nil
}
