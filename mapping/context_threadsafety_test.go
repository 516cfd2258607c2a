package mapping

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/spring-projects/spring-data-commons-sub014/typeinfo"
)

func TestConcurrentLookupConstructsOnce(t *testing.T) {
	address := newAddressClass()
	person := newPersonClass(address)
	ctx := NewContext()

	const goroutines = 64

	results := make([]*PersistentEntity, goroutines)
	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		i := i
		g.Go(func() error {
			e, err := ctx.GetPersistentEntity(person)
			if err != nil {
				return err
			}
			results[i] = e
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, e := range results {
		assert.Same(t, results[0], e)
	}

	// Person and Address, each constructed exactly once regardless of how
	// many goroutines raced on the miss.
	stats := ctx.Stats()
	assert.Equal(t, 2, stats.TotalEntities)
	assert.Equal(t, int64(2), stats.Constructions)
}

func TestConcurrentLookupDisjointTypes(t *testing.T) {
	const types = 32

	classes := make([]*typeinfo.Class, types)
	for i := range classes {
		classes[i] = typeinfo.NewClass(fmt.Sprintf("Entity%02d", i)).
			WithField("name", typeinfo.Ref(typeinfo.StringClass))
	}

	ctx := NewContext()
	var g errgroup.Group
	for _, cls := range classes {
		cls := cls
		g.Go(func() error {
			_, err := ctx.GetPersistentEntity(cls)
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, ctx.Entities(), types)
	assert.Equal(t, int64(types), ctx.Stats().Constructions)
}

func TestConcurrentReadsDuringConstruction(t *testing.T) {
	author, book := newAuthorBookClasses()
	person := newPersonClass(newAddressClass())
	ctx := NewContext()
	require.NoError(t, ctx.Initialize(person))

	var wg sync.WaitGroup
	start := make(chan struct{})

	// Writers racing on the cyclic pair.
	for i := 0; i < 8; i++ {
		cls := author
		if i%2 == 1 {
			cls = book
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := ctx.GetPersistentEntity(cls)
			assert.NoError(t, err)
		}()
	}

	// Readers on already-cached state.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 100; j++ {
				e, err := ctx.GetPersistentEntity(person)
				assert.NoError(t, err)
				if _, ok := e.PersistentProperty("name"); !ok {
					t.Error("cached entity lost a property")
					return
				}
				ctx.Stats()
			}
		}()
	}

	close(start)
	wg.Wait()

	// The cyclic pair was still built in exactly one sequence of two.
	assert.Equal(t, int64(4), ctx.Stats().Constructions)
}

func TestConcurrentPropertyPathResolution(t *testing.T) {
	person := newPersonClass(newAddressClass())
	ctx := NewContext()

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			path, err := ctx.GetPersistentPropertyPath(person, "address.city")
			if err != nil {
				return err
			}
			if got := path.DotPath(); got != "address.city" {
				return fmt.Errorf("unexpected path %q", got)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
