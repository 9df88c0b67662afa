package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	service "github.com/okian/shoplist/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

func TestItemRequest_Validate(t *testing.T) {
	Convey("Given an item request", t, func() {
		Convey("When the name is present", func() {
			So(itemRequest{Name: "Kale"}.validate(), ShouldBeNil)
		})

		Convey("When the name is missing", func() {
			err := itemRequest{}.validate()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "name: field is required")
		})

		Convey("When the name is blank", func() {
			err := itemRequest{Name: " \t"}.validate()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "name: must not be blank")
		})
	})
}

func TestDecodeItemRequest(t *testing.T) {
	Convey("Given request bodies", t, func() {
		decode := func(body string) (itemRequest, error) {
			r := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(body))
			return decodeItemRequest(httptest.NewRecorder(), r)
		}

		Convey("When the body is valid", func() {
			req, err := decode(`{"name":"Kale","extra":1}`)
			So(err, ShouldBeNil)
			So(req.Name, ShouldEqual, "Kale")
		})

		Convey("When the body is empty", func() {
			_, err := decode("")
			So(err.Error(), ShouldEqual, "missing body")
		})

		Convey("When the body is not JSON", func() {
			_, err := decode("name=Kale")
			So(err.Error(), ShouldStartWith, "invalid json")
		})

		Convey("When valid JSON is followed by trailing data", func() {
			_, err := decode(`{"name":"Kale"} garbage`)
			So(err.Error(), ShouldEqual, "invalid json: trailing data")

			_, err = decode(`{"name":"Kale"}{"name":"Leek"}`)
			So(err, ShouldNotBeNil)
		})

		Convey("When the name has the wrong type", func() {
			_, err := decode(`{"name":7}`)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given wrapped errors", t, func() {
		So(classify(WrapKind("op", ErrNotFound, errors.New("x"))), ShouldEqual, http.StatusNotFound)
		So(classify(Wrap("op", service.ErrNotFound)), ShouldEqual, http.StatusNotFound)
		So(classify(NewKind("op", ErrMethodNotAllowed)), ShouldEqual, http.StatusMethodNotAllowed)
		So(classify(WrapKind("op", ErrBadRequest, errors.New("x"))), ShouldEqual, http.StatusInternalServerError)
		So(classify(Wrap("op", service.ErrInvalidName)), ShouldEqual, http.StatusInternalServerError)
		So(classify(errors.New("boom")), ShouldEqual, http.StatusInternalServerError)
	})

	Convey("Given an Error", t, func() {
		err := WrapKind("update item", ErrNotFound, errors.New("bad id"))
		So(err.Error(), ShouldEqual, "update item: not found: bad id")
		So(Wrap("op", nil), ShouldBeNil)
	})
}
