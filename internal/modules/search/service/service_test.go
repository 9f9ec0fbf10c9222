package search

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"anoa.com/elearning/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanContentForIndex(t *testing.T) {
	policy := bluemonday.StrictPolicy()

	got := cleanContentForIndex(policy, "<p>Learn <b>Go</b></p><p>fast &amp; well</p><script>alert(1)</script>")
	assert.Equal(t, "Learn Go fast & well", got)
	assert.Equal(t, "", cleanContentForIndex(policy, "   "))
}

func TestNewCourseDoc(t *testing.T) {
	course := &entity.Course{
		ID:                uuid.New(),
		TeacherID:         uuid.New(),
		CategoryID:        uuid.New(),
		Name:              "Go Concurrency",
		ShortDescription:  "<em>channels</em>",
		DetailDescription: "<div>select</div><div>sync</div>",
		Price:             49.5,
		CreatedAt:         time.Unix(1700000000, 0),
	}

	doc := newCourseDoc(bluemonday.StrictPolicy(), course, "Ada", "Go")
	assert.Equal(t, course.ID.String(), doc.ID)
	assert.Equal(t, "channels", doc.ShortDescription)
	assert.Equal(t, "select sync", doc.DetailDescription)
	assert.Equal(t, int64(1700000000), doc.CreatedAt)
	assert.Equal(t, "Ada", doc.Teacher)
	assert.Equal(t, "Go", doc.Category)
}

func TestDecodeSuggestions(t *testing.T) {
	raw := []byte(`{"hits":[{"id":"1","name":"Go","teacher":"Ada","category":"Backend","category_id":"c1","image_url":"u"}],"query":"go"}`)

	got, err := decodeSuggestions(raw)
	require.NoError(t, err)
	assert.Equal(t, []Suggestion{{ID: "1", Name: "Go", Teacher: "Ada", Category: "Backend", CategoryID: "c1", ImageURL: "u"}}, got)

	_, err = decodeSuggestions([]byte("not json"))
	assert.Error(t, err)
}

func TestNoopCourseIndex(t *testing.T) {
	idx := NewNoopCourseIndex()
	assert.NoError(t, idx.IndexCourse(context.Background(), &entity.Course{}, "", ""))
	assert.NoError(t, idx.DeleteCourse(context.Background(), uuid.New()))

	got, err := idx.Suggest(context.Background(), "go", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

type ctxKey struct{}

// recordingIndexManager implements only the context-aware calls; any other
// method hits the nil embedded interface and panics.
type recordingIndexManager struct {
	meilisearch.IndexManager
	contexts []context.Context
	added    []courseDoc
	deleted  []string
	searched string
}

func (m *recordingIndexManager) UpdateFilterableAttributes(*[]interface{}) (*meilisearch.TaskInfo, error) {
	return &meilisearch.TaskInfo{}, nil
}

func (m *recordingIndexManager) UpdateSortableAttributes(*[]string) (*meilisearch.TaskInfo, error) {
	return &meilisearch.TaskInfo{}, nil
}

func (m *recordingIndexManager) AddDocumentsWithContext(ctx context.Context, docs interface{}, primaryKey *string) (*meilisearch.TaskInfo, error) {
	m.contexts = append(m.contexts, ctx)
	m.added = append(m.added, docs.([]courseDoc)...)
	return &meilisearch.TaskInfo{TaskUID: 1}, nil
}

func (m *recordingIndexManager) DeleteDocumentWithContext(ctx context.Context, id string) (*meilisearch.TaskInfo, error) {
	m.contexts = append(m.contexts, ctx)
	m.deleted = append(m.deleted, id)
	return &meilisearch.TaskInfo{TaskUID: 2}, nil
}

func (m *recordingIndexManager) SearchRawWithContext(ctx context.Context, query string, _ *meilisearch.SearchRequest) (*json.RawMessage, error) {
	m.contexts = append(m.contexts, ctx)
	m.searched = query
	raw := json.RawMessage(`{"hits":[{"id":"1","name":"Go"}]}`)
	return &raw, nil
}

type recordingClient struct {
	meilisearch.ServiceManager
	index *recordingIndexManager
}

func (c *recordingClient) Index(string) meilisearch.IndexManager {
	return c.index
}

func TestMeiliCourseIndexPassesRequestContext(t *testing.T) {
	manager := &recordingIndexManager{}
	idx := NewMeiliCourseIndex(&recordingClient{index: manager}, nil)
	ctx := context.WithValue(context.Background(), ctxKey{}, "request")

	course := &entity.Course{ID: uuid.New(), Name: "Go"}
	require.NoError(t, idx.IndexCourse(ctx, course, "Ada", "Backend"))
	require.NoError(t, idx.DeleteCourse(ctx, course.ID))
	got, err := idx.Suggest(ctx, "go", 5)
	require.NoError(t, err)

	assert.Equal(t, []Suggestion{{ID: "1", Name: "Go"}}, got)
	assert.Equal(t, "go", manager.searched)
	assert.Equal(t, []string{course.ID.String()}, manager.deleted)
	require.Len(t, manager.added, 1)
	assert.Equal(t, "Ada", manager.added[0].Teacher)

	require.Len(t, manager.contexts, 3)
	for _, c := range manager.contexts {
		assert.Equal(t, "request", c.Value(ctxKey{}))
	}
}
