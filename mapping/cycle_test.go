package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spring-projects/spring-data-commons-sub014/typeinfo"
)

// Mutually referential entity classes: Author lists Books, Book points back
// at its Author.
func newAuthorBookClasses() (author, book *typeinfo.Class) {
	author = typeinfo.NewClass("Author")
	book = typeinfo.NewClass("Book")
	author.
		WithField("name", typeinfo.Ref(typeinfo.StringClass)).
		WithField("books", typeinfo.ListOf(typeinfo.Ref(book)))
	book.
		WithField("title", typeinfo.Ref(typeinfo.StringClass)).
		WithField("author", typeinfo.Ref(author))
	return author, book
}

func TestCyclicEntityGraphTerminates(t *testing.T) {
	author, book := newAuthorBookClasses()
	ctx := NewContext()

	authorEntity, err := ctx.GetPersistentEntity(author)
	require.NoError(t, err)

	bookEntity, err := ctx.GetPersistentEntity(book)
	require.NoError(t, err)

	// One construction sequence built both; the second lookup was a cache
	// hit.
	assert.Equal(t, int64(2), ctx.Stats().Constructions)

	books, ok := authorEntity.PersistentProperty("books")
	require.True(t, ok)
	require.True(t, books.IsAssociation())

	backRef, ok := bookEntity.PersistentProperty("author")
	require.True(t, ok)
	require.True(t, backRef.IsAssociation())

	t.Run("back references resolve to the cached instances", func(t *testing.T) {
		viaBooks, ok := ctx.GetPersistentEntityForProperty(books)
		require.True(t, ok)
		assert.Same(t, bookEntity, viaBooks)

		viaAuthor, ok := ctx.GetPersistentEntityForProperty(backRef)
		require.True(t, ok)
		assert.Same(t, authorEntity, viaAuthor)
	})
}

func TestCyclicEntityGraphIsReported(t *testing.T) {
	author, _ := newAuthorBookClasses()
	ctx := NewContext()
	require.NoError(t, ctx.Initialize(author))

	stats := ctx.Stats()
	assert.Equal(t, 2, stats.TotalEntities)
	assert.True(t, stats.CircularRefs)

	report := ctx.AnalyzeDependencies()
	assert.True(t, report.HasCycles)
	require.NotEmpty(t, report.CircularRefs)
	assert.ElementsMatch(t, []string{"Author", "Book"}, report.CircularRefs[0])
	assert.Empty(t, report.TopologicalOrder)
}

func TestDeepCycleThroughIntermediateEntity(t *testing.T) {
	a := typeinfo.NewClass("A")
	b := typeinfo.NewClass("B")
	c := typeinfo.NewClass("C")
	a.WithField("b", typeinfo.Ref(b))
	b.WithField("c", typeinfo.Ref(c))
	c.WithField("a", typeinfo.Ref(a))

	ctx := NewContext()
	_, err := ctx.GetPersistentEntity(a)
	require.NoError(t, err)

	assert.Len(t, ctx.Entities(), 3)
	assert.Equal(t, int64(3), ctx.Stats().Constructions)

	path, err := ctx.GetPersistentPropertyPath(a, "b.c.a.b")
	require.NoError(t, err)
	assert.Equal(t, "b.c.a.b", path.DotPath())
}
