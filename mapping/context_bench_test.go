package mapping

import (
	"testing"

	"github.com/spring-projects/spring-data-commons-sub014/typeinfo"
)

func BenchmarkGetPersistentEntityCached(b *testing.B) {
	person := newPersonClass(newAddressClass())
	ctx := NewContext()
	if _, err := ctx.GetPersistentEntity(person); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ctx.GetPersistentEntity(person); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetPersistentEntityCachedParallel(b *testing.B) {
	person := newPersonClass(newAddressClass())
	ctx := NewContext()
	if _, err := ctx.GetPersistentEntity(person); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := ctx.GetPersistentEntity(person); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkEntityConstruction(b *testing.B) {
	person := newPersonClass(newAddressClass())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctx := NewContext()
		if _, err := ctx.GetPersistentEntity(person); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetPersistentPropertyPath(b *testing.B) {
	person := newPersonClass(newAddressClass())
	ctx := NewContext()
	if _, err := ctx.GetPersistentEntity(person); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ctx.GetPersistentPropertyPath(person, "address.city"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCyclicConstruction(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		author := typeinfo.NewClass("Author")
		book := typeinfo.NewClass("Book")
		author.WithField("books", typeinfo.ListOf(typeinfo.Ref(book)))
		book.WithField("author", typeinfo.Ref(author))

		ctx := NewContext()
		if _, err := ctx.GetPersistentEntity(author); err != nil {
			b.Fatal(err)
		}
	}
}
