package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/shoplist/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
	. "github.com/smartystreets/goconvey/convey"
)

// mongoTestURIEnv points the integration tests at a disposable MongoDB.
const mongoTestURIEnv = "SHOPLIST_TEST_MONGO_URI"

func TestNewMongoStore_BadURI(t *testing.T) {
	Convey("Given an unparsable connection string", t, func() {
		_, err := NewMongoStore(context.Background(), WithURI("http://localhost"), WithConnectTimeout(time.Second))

		Convey("Then the store should report itself unavailable", func() {
			So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
		})
	})
}

func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv(mongoTestURIEnv)
	if uri == "" {
		t.Skipf("%s not set", mongoTestURIEnv)
	}

	Convey("Given a mongo store on a fresh collection", t, func() {
		ctx := context.Background()
		s, err := NewMongoStore(ctx,
			WithURI(uri),
			WithDatabase("shopping-list-test"),
			WithCollection("items_"+primitive.NewObjectID().Hex()),
		)
		So(err, ShouldBeNil)
		defer func() {
			_ = s.Drop(ctx)
			_ = s.Close(ctx)
		}()

		items := seed(ctx, s, "Broad beans", "Tomatoes", "Peppers")

		Convey("Then find should return the seeded items in order", func() {
			got, err := s.Find(ctx)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, items)
			So(s.Backend(), ShouldEqual, "mongo")
		})

		Convey("Then update should return the renamed item", func() {
			got, err := s.FindByIDAndUpdate(ctx, items[0].ID, model.ItemPatch{Name: strptr("Changed")})
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "Changed")
		})

		Convey("Then remove should delete exactly one item", func() {
			_, err := s.FindByIDAndRemove(ctx, items[2].ID)
			So(err, ShouldBeNil)
			n, err := s.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)

			_, err = s.FindByIDAndRemove(ctx, items[2].ID)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Then malformed ids should be rejected before the round trip", func() {
			_, err := s.FindByIDAndRemove(ctx, "m23doesnotexist345345")
			So(errors.Is(err, ErrInvalidID), ShouldBeTrue)
		})
	})
}
