package apitests

import (
	"github.com/akademiaqa/api-contract-tests/model"
	"github.com/akademiaqa/api-contract-tests/random"
)

// referenceUserName is the name of the first user in the reference dataset.
const referenceUserName = "Leanne Graham"

const (
	existingPostID = 1
	existingUserID = 1
	sampledPostIDs = 5
)

func newPost(r random.Provider, userID int) model.Post {
	return model.Post{
		UserID: userID,
		Title:  r.Sentence(5),
		Body:   r.Paragraph(3),
	}
}

func newUser(r random.Provider) model.User {
	return model.User{
		Name:     r.Name(),
		Username: r.Username(),
		Email:    r.Email(),
		Address: &model.Address{
			Street:  r.Street(),
			Suite:   r.Suite(),
			City:    r.City(),
			Zipcode: r.Zipcode(),
			Geo:     &model.Geo{Lat: r.Lat(), Lng: r.Lng()},
		},
		Phone:   r.Phone(),
		Website: r.Website(),
		Company: &model.Company{
			Name:        r.CompanyName(),
			CatchPhrase: r.CatchPhrase(),
			BS:          r.BS(),
		},
	}
}
