package fakeapi

import (
	"github.com/akademiaqa/api-contract-tests/model"
	"github.com/akademiaqa/api-contract-tests/random"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	DefaultPostCount = 100
	DefaultUserCount = 10
	postsPerUser     = 10
)

// Dataset is the content served by a fake API. Posts are assigned to users ten at a time,
// so post i belongs to user (i-1)/10+1.
type Dataset struct {
	Posts []model.Post
	Users []model.User
}

// NewDataset builds a dataset of the given size. The first user is always "Leanne Graham";
// the remaining content is generated from seed.
func NewDataset(postCount, userCount int, seed uint64) Dataset {
	if seed == 0 {
		seed = 1
	}
	gen := random.NewFaker(seed)

	ds := Dataset{
		Posts: make([]model.Post, 0, postCount),
		Users: make([]model.User, 0, userCount),
	}
	for i := 1; i <= userCount; i++ {
		if i == 1 {
			ds.Users = append(ds.Users, leanneGraham())
			continue
		}
		ds.Users = append(ds.Users, model.User{
			ID:       ldvalue.NewOptionalInt(i),
			Name:     gen.Name(),
			Username: gen.Username(),
			Email:    gen.Email(),
			Phone:    gen.Phone(),
			Website:  gen.Website(),
			Address: &model.Address{
				Street:  gen.Street(),
				Suite:   gen.Suite(),
				City:    gen.City(),
				Zipcode: gen.Zipcode(),
				Geo:     &model.Geo{Lat: gen.Lat(), Lng: gen.Lng()},
			},
			Company: &model.Company{
				Name:        gen.CompanyName(),
				CatchPhrase: gen.CatchPhrase(),
				BS:          gen.BS(),
			},
		})
	}
	for i := 1; i <= postCount; i++ {
		ds.Posts = append(ds.Posts, model.Post{
			ID:     ldvalue.NewOptionalInt(i),
			UserID: (i-1)/postsPerUser + 1,
			Title:  gen.Sentence(gen.IntBetween(3, 8)),
			Body:   gen.Paragraph(3),
		})
	}
	return ds
}

// DefaultDataset matches the shape of the public reference fixture: 100 posts and 10 users.
func DefaultDataset() Dataset {
	return NewDataset(DefaultPostCount, DefaultUserCount, 1)
}

func leanneGraham() model.User {
	return model.User{
		ID:       ldvalue.NewOptionalInt(1),
		Name:     "Leanne Graham",
		Username: "Bret",
		Email:    "Sincere@april.biz",
		Phone:    "1-770-736-8031 x56442",
		Website:  "hildegard.org",
		Address: &model.Address{
			Street:  "Kulas Light",
			Suite:   "Apt. 556",
			City:    "Gwenborough",
			Zipcode: "92998-3874",
			Geo:     &model.Geo{Lat: "-37.3159", Lng: "81.1496"},
		},
		Company: &model.Company{
			Name:        "Romaguera-Crona",
			CatchPhrase: "Multi-layered client-server neural-net",
			BS:          "harness real-time e-markets",
		},
	}
}
