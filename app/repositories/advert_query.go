package repositories

import (
	"regexp"
	"strings"

	"github.com/shashiranjanraj/propelyu/app/models"
	"github.com/shashiranjanraj/propelyu/pkg/apperr"
	"github.com/shashiranjanraj/propelyu/pkg/suggest"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultLimit   = 10
	MaxLimit       = 100
	PriceBandRatio = 0.2
	PriceBandLimit = 5
)

// AdvertQuery filters the public listing.
type AdvertQuery struct {
	Search   string
	Category string
	Price    *float64
	Limit    int64
	Skip     int64
}

// Normalize trims the text fields and applies the default limit.
func (q AdvertQuery) Normalize() AdvertQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Category = strings.TrimSpace(q.Category)
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	return q
}

func (q AdvertQuery) Validate() error {
	fields := map[string]string{}
	if q.Limit < 0 {
		fields["limit"] = "must not be negative"
	} else if q.Limit > MaxLimit {
		fields["limit"] = "must be at most 100"
	}
	if q.Skip < 0 {
		fields["skip"] = "must not be negative"
	}
	if q.Price != nil && *q.Price < 0 {
		fields["price"] = "must not be negative"
	}
	if len(fields) > 0 {
		err := apperr.InvalidInput("invalid query")
		err.Fields = fields
		return err
	}
	return nil
}

// Filter builds the MongoDB filter document.
func (q AdvertQuery) Filter() bson.D {
	filter := bson.D{}
	if q.Search != "" {
		re := containsRegex(q.Search)
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "description", Value: re}},
			bson.D{{Key: "location", Value: re}},
		}})
	}
	if q.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: exactRegex(q.Category)})
	}
	if q.Price != nil {
		filter = append(filter, bson.E{Key: "price", Value: *q.Price})
	}
	return filter
}

// Matches reports whether a passes the same filter in memory.
func (q AdvertQuery) Matches(a models.Advert) bool {
	if q.Search != "" && !containsFold(a.Title, q.Search) &&
		!containsFold(a.Description, q.Search) && !containsFold(a.Location, q.Search) {
		return false
	}
	if q.Category != "" && !strings.EqualFold(a.Category, q.Category) {
		return false
	}
	if q.Price != nil && a.Price != *q.Price {
		return false
	}
	return true
}

// SimilarQuery finds adverts sharing text with Target. The target itself is
// never returned.
type SimilarQuery struct {
	Target models.Advert
	Limit  int64
	Skip   int64
}

func (q SimilarQuery) Filter() bson.D {
	or := bson.A{}
	if q.Target.Title != "" {
		or = append(or, bson.D{{Key: "title", Value: containsRegex(q.Target.Title)}})
	}
	if q.Target.Description != "" {
		re := containsRegex(q.Target.Description)
		or = append(or,
			bson.D{{Key: "description", Value: re}},
			bson.D{{Key: "location", Value: re}},
		)
	}
	if len(or) == 0 {
		// nothing to compare against: match nothing
		or = append(or, bson.D{{Key: "_id", Value: bson.D{{Key: "$exists", Value: false}}}})
	}
	return bson.D{
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: q.Target.ID}}},
		{Key: "$or", Value: or},
	}
}

func (q SimilarQuery) Matches(a models.Advert) bool {
	if a.ID == q.Target.ID {
		return false
	}
	t := q.Target
	return (t.Title != "" && containsFold(a.Title, t.Title)) ||
		(t.Description != "" && (containsFold(a.Description, t.Description) || containsFold(a.Location, t.Description)))
}

// PriceBandQuery selects adverts of the same category priced within
// ±PriceBandRatio of the target.
type PriceBandQuery struct {
	Target models.Advert
	Limit  int64
}

func (q PriceBandQuery) band() (float64, float64) {
	return suggest.PriceBand(q.Target.Price, PriceBandRatio)
}

func (q PriceBandQuery) limit() int64 {
	if q.Limit <= 0 {
		return PriceBandLimit
	}
	return q.Limit
}

func (q PriceBandQuery) Filter() bson.D {
	lo, hi := q.band()
	return bson.D{
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: q.Target.ID}}},
		{Key: "category", Value: q.Target.Category},
		{Key: "price", Value: bson.D{{Key: "$gte", Value: lo}, {Key: "$lte", Value: hi}}},
	}
}

func (q PriceBandQuery) Matches(a models.Advert) bool {
	lo, hi := q.band()
	return a.ID != q.Target.ID && a.Category == q.Target.Category && a.Price >= lo && a.Price <= hi
}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func exactRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
