// Package random supplies the random test data that scenarios use for fields whose exact
// values do not matter.
//
// A Provider is handed to each scenario rather than reached through a global. Providers
// created with the same seed and scenario name produce the same sequence of values, which
// makes a run reproducible with --seed regardless of the order scenarios execute in.
package random

import (
	"hash/fnv"
	"strconv"

	"github.com/brianvoe/gofakeit/v7"
)

type Provider interface {
	Word() string
	Sentence(words int) string
	Paragraph(sentences int) string
	IntBetween(min, max int) int

	Name() string
	Username() string
	Email() string
	Phone() string
	Website() string

	Street() string
	Suite() string
	City() string
	Zipcode() string
	Lat() string
	Lng() string

	CompanyName() string
	CatchPhrase() string
	BS() string
}

// Faker is a Provider backed by gofakeit. It is not safe for concurrent use; give each
// scenario its own.
type Faker struct {
	f *gofakeit.Faker
}

// NewFaker creates a Faker. A zero seed picks a random one.
func NewFaker(seed uint64) *Faker {
	return &Faker{f: gofakeit.New(seed)}
}

// ForScenario creates a Faker whose sequence depends only on the run seed and the scenario
// name. With a zero run seed the result is unseeded.
func ForScenario(seed uint64, scenario string) *Faker {
	if seed == 0 {
		return NewFaker(0)
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(scenario))
	derived := seed ^ h.Sum64()
	if derived == 0 {
		derived = seed
	}
	return NewFaker(derived)
}

func (r *Faker) Word() string { return r.f.Word() }

func (r *Faker) Sentence(words int) string {
	if words < 1 {
		words = 1
	}
	return r.f.Sentence(words)
}

func (r *Faker) Paragraph(sentences int) string {
	if sentences < 1 {
		sentences = 1
	}
	return r.f.Paragraph(1, sentences, 8, " ")
}

func (r *Faker) IntBetween(min, max int) int { return r.f.IntRange(min, max) }

func (r *Faker) Name() string     { return r.f.Name() }
func (r *Faker) Username() string { return r.f.Username() }
func (r *Faker) Email() string    { return r.f.Email() }
func (r *Faker) Phone() string    { return r.f.Phone() }
func (r *Faker) Website() string  { return r.f.DomainName() }

func (r *Faker) Street() string  { return r.f.Street() }
func (r *Faker) Suite() string   { return "Apt. " + strconv.Itoa(r.f.IntRange(100, 999)) }
func (r *Faker) City() string    { return r.f.City() }
func (r *Faker) Zipcode() string { return r.f.Zip() }
func (r *Faker) Lat() string     { return strconv.FormatFloat(r.f.Latitude(), 'f', 4, 64) }
func (r *Faker) Lng() string     { return strconv.FormatFloat(r.f.Longitude(), 'f', 4, 64) }

func (r *Faker) CompanyName() string { return r.f.Company() }
func (r *Faker) CatchPhrase() string { return r.f.BuzzWord() + " " + r.f.Word() }
func (r *Faker) BS() string          { return r.f.BS() }
