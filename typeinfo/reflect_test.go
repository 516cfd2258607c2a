package typeinfo

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type account struct {
	ID        uuid.UUID `mapping:",id"`
	Email     string
	Balance   float64
	Active    bool
	Tags      []string
	Scores    map[string]int
	Avatar    []byte
	CreatedAt time.Time
	secret    string
	Skipped   string `mapping:"-"`
}

func TestDescribeStruct(t *testing.T) {
	ri := NewReflectIntrospector()

	c, err := DescribeOf[account](ri)
	require.NoError(t, err)
	assert.Equal(t, "account", c.Name)

	byName := make(map[string]Field)
	for _, f := range c.Fields {
		byName[f.Name] = f
	}

	assert.NotContains(t, byName, "secret", "unexported fields are ignored")
	assert.NotContains(t, byName, "skipped")
	assert.NotContains(t, byName, "Skipped")

	id := byName["id"]
	assert.True(t, id.Markers.Has(MarkerID))
	assert.Equal(t, Ref(UUIDClass), id.Type)

	assert.Equal(t, Ref(StringClass), byName["email"].Type)
	assert.Equal(t, Ref(Float64Class), byName["balance"].Type)
	assert.Equal(t, Ref(BoolClass), byName["active"].Type)
	assert.Equal(t, Ref(BytesClass), byName["avatar"].Type)
	assert.Equal(t, Ref(TimeClass), byName["createdAt"].Type)
	assert.Equal(t, ArrayOf(Ref(StringClass)), byName["tags"].Type)
	assert.Equal(t, MapOf(Ref(StringClass), Ref(IntClass)), byName["scores"].Type)
}

func TestDescribeIsMemoized(t *testing.T) {
	ri := NewReflectIntrospector()

	first, err := DescribeOf[account](ri)
	require.NoError(t, err)
	second, err := DescribeOf[account](ri)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestDescribeFollowsPointers(t *testing.T) {
	ri := NewReflectIntrospector()

	direct, err := ri.Describe(reflect.TypeOf(account{}))
	require.NoError(t, err)
	viaPtr, err := ri.Describe(reflect.TypeOf(&account{}))
	require.NoError(t, err)

	assert.Same(t, direct, viaPtr)
}

type node struct {
	Value string
	Next  *node
}

func TestDescribeCyclicStruct(t *testing.T) {
	ri := NewReflectIntrospector()

	c, err := DescribeOf[node](ri)
	require.NoError(t, err)

	next, ok := c.FieldNamed("next")
	require.True(t, ok)
	// The self reference resolves to the same descriptor instance.
	assert.Equal(t, Ref(c), next.Type)
}

type auditable struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

type document struct {
	auditable
	Title string
}

func TestEmbeddedStructBecomesSupertype(t *testing.T) {
	ri := NewReflectIntrospector()

	c, err := DescribeOf[document](ri)
	require.NoError(t, err)

	require.NotNil(t, c.Super)
	super, err := DescribeOf[auditable](ri)
	require.NoError(t, err)
	assert.Equal(t, Ref(super), c.Super)

	// Inherited fields are visible through the erased super chain.
	created, ok := c.FieldNamed("createdAt")
	require.True(t, ok)
	assert.Equal(t, Ref(TimeClass), created.Type)

	ti, err := From(c)
	require.NoError(t, err)
	prop, err := ti.RequiredProperty("updatedAt")
	require.NoError(t, err)
	assert.Same(t, TimeClass, prop.Type())
}

type tagged struct {
	Name string `mapping:"full_name"`
	Home string `mapping:"home,ref,store:home_address"`
	Temp string `mapping:",transient"`
	Hash string `mapping:",value"`
	Deps string `mapping:",injected"`
}

func TestTagDirectives(t *testing.T) {
	ri := NewReflectIntrospector()

	c, err := DescribeOf[tagged](ri)
	require.NoError(t, err)

	name, ok := c.FieldNamed("full_name")
	require.True(t, ok)
	assert.Equal(t, Marker(0), name.Markers)

	home, ok := c.FieldNamed("home")
	require.True(t, ok)
	assert.True(t, home.Markers.Has(MarkerReference))
	assert.Equal(t, "home_address", home.StorageName)

	temp, ok := c.FieldNamed("temp")
	require.True(t, ok)
	assert.True(t, temp.Markers.Has(MarkerTransient))

	hash, ok := c.FieldNamed("hash")
	require.True(t, ok)
	assert.True(t, hash.Markers.Has(MarkerValue))

	deps, ok := c.FieldNamed("deps")
	require.True(t, ok)
	assert.True(t, deps.Markers.Has(MarkerInjected))
}

func TestDescribeRejectsNonStruct(t *testing.T) {
	ri := NewReflectIntrospector()

	_, err := ri.Describe(reflect.TypeOf("hello"))

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
}

type withChannel struct {
	Events chan string
}

func TestDescribeRejectsUnsupportedFieldKind(t *testing.T) {
	ri := NewReflectIntrospector()

	_, err := DescribeOf[withChannel](ri)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Contains(t, resErr.Reason, "chan")
}

type brokenContact struct {
	Name   string
	Events chan string
	Email  string
}

type wrapsBroken struct {
	Inner brokenContact
}

func TestFailedDescriptionIsNotCached(t *testing.T) {
	ri := NewReflectIntrospector()

	_, err := DescribeOf[brokenContact](ri)
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)

	// The failure leaves nothing behind: the retry fails identically
	// instead of serving a descriptor missing the fields declared after
	// the offending one.
	_, err = DescribeOf[brokenContact](ri)
	require.ErrorAs(t, err, &resErr)

	t.Run("failure through a nested type discards the whole attempt", func(t *testing.T) {
		_, err := DescribeOf[wrapsBroken](ri)
		require.ErrorAs(t, err, &resErr)

		_, err = DescribeOf[wrapsBroken](ri)
		require.ErrorAs(t, err, &resErr)
	})

	t.Run("unrelated types still describe after a failure", func(t *testing.T) {
		c, err := DescribeOf[account](ri)
		require.NoError(t, err)
		assert.Len(t, c.Fields, 8)
	})
}

func TestDescribeConcurrent(t *testing.T) {
	ri := NewReflectIntrospector()

	const goroutines = 16
	results := make([]*Class, goroutines)
	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		i := i
		g.Go(func() error {
			c, err := DescribeOf[account](ri)
			if err != nil {
				return err
			}
			results[i] = c
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// Every goroutine sees the same, fully described descriptor; no caller
	// can observe one whose fields are still being appended.
	for _, c := range results {
		require.Same(t, results[0], c)
		assert.Len(t, c.Fields, 8)
	}
}

func TestDescribeTimeIsSimple(t *testing.T) {
	ri := NewReflectIntrospector()

	c, err := ri.Describe(reflect.TypeOf(time.Time{}))
	require.NoError(t, err)
	assert.Same(t, TimeClass, c)
	assert.True(t, c.Simple)
}
