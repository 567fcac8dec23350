package model

import (
	"gopkg.in/launchdarkly/go-jsonstream.v1/jreader"
	"gopkg.in/launchdarkly/go-jsonstream.v1/jwriter"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// User is a member of the users collection. Address and Company are nil when the
// property is absent or null.
type User struct {
	ID       ldvalue.OptionalInt
	Name     string   `validate:"required"`
	Username string   `validate:"required"`
	Email    string   `validate:"required,email"`
	Phone    string   `validate:"required"`
	Website  string   `validate:"required"`
	Address  *Address `validate:"required"`
	Company  *Company `validate:"required"`
}

type Address struct {
	Street  string `validate:"required"`
	Suite   string
	City    string `validate:"required"`
	Zipcode string `validate:"required"`
	Geo     *Geo   `validate:"required"`
}

type Geo struct {
	Lat string `validate:"required"`
	Lng string `validate:"required"`
}

type Company struct {
	Name        string `validate:"required"`
	CatchPhrase string
	BS          string
}

// DecodeUser parses a single user from a JSON object.
func DecodeUser(data []byte) (User, error) {
	var u User
	err := decode("User", data, func(r *jreader.Reader) { u.ReadFromJSONReader(r) })
	return u, err
}

// DecodeUsers parses a JSON array of users.
func DecodeUsers(data []byte) ([]User, error) {
	var ret []User
	err := decode("[]User", data, func(r *jreader.Reader) {
		ret = []User{}
		for arr := r.Array(); arr.Next(); {
			var u User
			u.ReadFromJSONReader(r)
			ret = append(ret, u)
		}
	})
	return ret, err
}

func (u *User) ReadFromJSONReader(r *jreader.Reader) {
	var ret User
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "id":
			ret.ID.ReadFromJSONReader(r)
		case "name":
			ret.Name = readString(r)
		case "username":
			ret.Username = readString(r)
		case "email":
			ret.Email = readString(r)
		case "phone":
			ret.Phone = readString(r)
		case "website":
			ret.Website = readString(r)
		case "address":
			ret.Address = readAddress(r)
		case "company":
			ret.Company = readCompany(r)
		}
	}
	if r.Error() == nil {
		*u = ret
	}
}

func readAddress(r *jreader.Reader) *Address {
	obj := r.ObjectOrNull()
	if !obj.IsDefined() {
		return nil
	}
	var a Address
	for obj.Next() {
		switch string(obj.Name()) {
		case "street":
			a.Street = readString(r)
		case "suite":
			a.Suite = readString(r)
		case "city":
			a.City = readString(r)
		case "zipcode":
			a.Zipcode = readString(r)
		case "geo":
			a.Geo = readGeo(r)
		}
	}
	return &a
}

func readGeo(r *jreader.Reader) *Geo {
	obj := r.ObjectOrNull()
	if !obj.IsDefined() {
		return nil
	}
	var g Geo
	for obj.Next() {
		switch string(obj.Name()) {
		case "lat":
			g.Lat = readString(r)
		case "lng":
			g.Lng = readString(r)
		}
	}
	return &g
}

func readCompany(r *jreader.Reader) *Company {
	obj := r.ObjectOrNull()
	if !obj.IsDefined() {
		return nil
	}
	var c Company
	for obj.Next() {
		switch string(obj.Name()) {
		case "name":
			c.Name = readString(r)
		case "catchPhrase":
			c.CatchPhrase = readString(r)
		case "bs":
			c.BS = readString(r)
		}
	}
	return &c
}

func (u User) WriteToJSONWriter(w *jwriter.Writer) {
	obj := w.Object()
	if u.ID.IsDefined() {
		obj.Name("id").Int(u.ID.IntValue())
	}
	obj.Name("name").String(u.Name)
	obj.Name("username").String(u.Username)
	obj.Name("email").String(u.Email)
	obj.Name("phone").String(u.Phone)
	obj.Name("website").String(u.Website)
	if a := u.Address; a != nil {
		ao := obj.Name("address").Object()
		ao.Name("street").String(a.Street)
		ao.Name("suite").String(a.Suite)
		ao.Name("city").String(a.City)
		ao.Name("zipcode").String(a.Zipcode)
		if g := a.Geo; g != nil {
			geo := ao.Name("geo").Object()
			geo.Name("lat").String(g.Lat)
			geo.Name("lng").String(g.Lng)
			geo.End()
		}
		ao.End()
	}
	if c := u.Company; c != nil {
		co := obj.Name("company").Object()
		co.Name("name").String(c.Name)
		co.Name("catchPhrase").String(c.CatchPhrase)
		co.Name("bs").String(c.BS)
		co.End()
	}
	obj.End()
}

func (u User) MarshalJSON() ([]byte, error) {
	return encode(u)
}

func (u *User) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeUser(data)
	if err == nil {
		*u = decoded
	}
	return err
}
