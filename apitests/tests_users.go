package apitests

import (
	"net/http"

	"github.com/akademiaqa/api-contract-tests/model"

	"github.com/gavv/httpexpect/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoUserTests(t *T) {
	t.RunAll(
		Scenario{"get all users", getAllUsers},
		Scenario{"get user by id", getUserByID},
		Scenario{"get every user by id", getEveryUserByID},
		Scenario{"get non-existing user", getMissingUser},
		Scenario{"verify user structure", verifyUserStructure},
		Scenario{"filter users by name", filterUsersByName},
		Scenario{"create user", createUser},
	)
}

func getAllUsers(t *T) {
	expected := t.Config().Fixture.UserCount

	resp := t.GET("/users").Expect().Status(http.StatusOK)
	resp.JSON().Array().Length().IsEqual(expected)

	users := RequireDecoded(t, resp, model.DecodeUsers)
	require.Len(t, users, expected)
	if expected > 0 {
		first := users[0]
		assert.True(t, first.ID.IsDefined(), "first user has no id")
		assert.NotEmpty(t, first.Name)
		assert.Contains(t, first.Email, "@")
	}
}

func getUserByID(t *T) {
	resp := t.GET("/users/{id}", existingUserID).Expect().Status(http.StatusOK)
	obj := resp.JSON().Object()
	obj.Value("id").Number().IsEqual(existingUserID)
	obj.Value("name").NotNull()
	obj.Value("email").NotNull()

	user := RequireDecoded(t, resp, model.DecodeUser)
	assert.Equal(t, ldvalue.NewOptionalInt(existingUserID), user.ID)
	assert.NotEmpty(t, user.Name)
	assert.Contains(t, user.Email, "@")
	require.NotNil(t, user.Address)
	assert.NotEmpty(t, user.Address.City)
}

func getEveryUserByID(t *T) {
	for id := 1; id <= t.Config().Fixture.UserCount; id++ {
		resp := t.GET("/users/{id}", id).Expect().Status(http.StatusOK)
		resp.JSON().Object().Value("id").Number().IsEqual(id)

		user := RequireDecoded(t, resp, model.DecodeUser)
		assert.Equal(t, id, user.ID.IntValue())
		assert.NoError(t, model.ValidateUser(user), "user %d", id)
	}
}

func getMissingUser(t *T) {
	t.GET("/users/{id}", t.Config().Fixture.MissingUserID).Expect().Status(http.StatusNotFound)
}

func verifyUserStructure(t *T) {
	resp := t.GET("/users/{id}", existingUserID).Expect().Status(http.StatusOK)
	obj := resp.JSON().Object()
	requireNonNull(obj, "name", "username", "email", "address", "phone", "website", "company")
	address := obj.Value("address").Object()
	requireNonNull(address, "street", "suite", "city", "zipcode", "geo")
	requireNonNull(address.Value("geo").Object(), "lat", "lng")
	requireNonNull(obj.Value("company").Object(), "name", "catchPhrase", "bs")

	user := RequireDecoded(t, resp, model.DecodeUser)
	assert.NoError(t, model.ValidateUser(user))
}

func requireNonNull(obj *httpexpect.Object, keys ...string) {
	for _, k := range keys {
		obj.Value(k).NotNull()
	}
}

func filterUsersByName(t *T) {
	resp := t.GET("/users").WithQuery("name", referenceUserName).Expect().Status(http.StatusOK)
	resp.JSON().Array().NotEmpty()

	users := RequireDecoded(t, resp, model.DecodeUsers)
	require.NotEmpty(t, users)
	for _, u := range users {
		assert.Equal(t, referenceUserName, u.Name)
	}
}

func createUser(t *T) {
	input := newUser(t.Random())

	resp := t.POST("/users", input).Expect().Status(http.StatusCreated)
	obj := resp.JSON().Object()
	obj.Value("id").NotNull()
	obj.Value("email").String().IsEqual(input.Email)
	obj.Value("address").Object().Value("city").String().IsEqual(input.Address.City)
	obj.Value("company").Object().Value("name").String().IsEqual(input.Company.Name)

	created := RequireDecoded(t, resp, model.DecodeUser)
	assert.True(t, created.ID.IsDefined(), "created user has no id")
	if diff := cmp.Diff(input, created, cmpopts.IgnoreFields(model.User{}, "ID")); diff != "" {
		t.Errorf("created user differs from the submitted one (-submitted +created):\n%s", diff)
	}
}
