// Package model contains the entities exchanged with the posts/users API, along with
// explicit JSON codecs for them.
//
// Each entity maps its JSON properties by hand with go-jsonstream rather than through
// reflection. Decoding ignores properties the entity does not declare and leaves an
// absent "id" undefined; encoding writes only declared properties and omits an undefined
// "id", so that the server assigns one on creation.
package model

import (
	"gopkg.in/launchdarkly/go-jsonstream.v1/jreader"
	"gopkg.in/launchdarkly/go-jsonstream.v1/jwriter"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type Post struct {
	ID     ldvalue.OptionalInt
	UserID int    `validate:"gt=0"`
	Title  string `validate:"required"`
	Body   string `validate:"required"`
}

// DecodePost parses a single post from a JSON object.
func DecodePost(data []byte) (Post, error) {
	var p Post
	err := decode("Post", data, func(r *jreader.Reader) { p.ReadFromJSONReader(r) })
	return p, err
}

// DecodePosts parses a JSON array of posts.
func DecodePosts(data []byte) ([]Post, error) {
	var ret []Post
	err := decode("[]Post", data, func(r *jreader.Reader) {
		ret = []Post{}
		for arr := r.Array(); arr.Next(); {
			var p Post
			p.ReadFromJSONReader(r)
			ret = append(ret, p)
		}
	})
	return ret, err
}

func (p *Post) ReadFromJSONReader(r *jreader.Reader) {
	var ret Post
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "id":
			ret.ID.ReadFromJSONReader(r)
		case "userId":
			ret.UserID = r.Int()
		case "title":
			ret.Title = readString(r)
		case "body":
			ret.Body = readString(r)
		}
	}
	if r.Error() == nil {
		*p = ret
	}
}

func (p Post) WriteToJSONWriter(w *jwriter.Writer) {
	obj := w.Object()
	if p.ID.IsDefined() {
		obj.Name("id").Int(p.ID.IntValue())
	}
	obj.Name("userId").Int(p.UserID)
	obj.Name("title").String(p.Title)
	obj.Name("body").String(p.Body)
	obj.End()
}

func (p Post) MarshalJSON() ([]byte, error) {
	return encode(p)
}

func (p *Post) UnmarshalJSON(data []byte) error {
	decoded, err := DecodePost(data)
	if err == nil {
		*p = decoded
	}
	return err
}
