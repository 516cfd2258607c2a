package typeinfo

import "testing"

func BenchmarkFrom(b *testing.B) {
	person := personClass(addressClass())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := From(person); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPropertyPath(b *testing.B) {
	ti, err := From(personClass(addressClass()))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ti.PropertyPath("address.city"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGenericResolution(b *testing.B) {
	_, stringBox := boxClasses()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ti, err := From(stringBox)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := ti.RequiredProperty("value"); err != nil {
			b.Fatal(err)
		}
	}
}
