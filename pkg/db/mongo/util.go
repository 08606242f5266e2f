package mongo

import (
	"github.com/telemetrydev/series-store/pkg/db/common"
	"go.mongodb.org/mongo-driver/bson"
)

func toBSONFilter(s *common.Selector) (*bson.E, error) {
	if s.Sa == nil && s.Sb == nil && s.K != "" {
		// ( op K V )
		return &bson.E{
			Key: s.K,
			Value: bson.D{
				bson.E{
					Key:   GetSelectorOpString(s.Op),
					Value: s.V,
				},
			},
		}, nil
	} else if s.Sa != nil && s.Sb != nil {
		// ( op Sa Sb ); logical ops take an array of sub-filters
		filterA, err := toBSONFilter(s.Sa)
		if err != nil {
			return nil, err
		}
		filterB, err := toBSONFilter(s.Sb)
		if err != nil {
			return nil, err
		}
		return &bson.E{
			Key: GetSelectorOpString(s.Op),
			Value: bson.A{
				bson.D{*filterA},
				bson.D{*filterB},
			},
		}, nil
	}
	return nil, ErrSelectorConvertFailed
}

func ToBSONFilter(s *common.Selector) (*bson.D, error) {
	if s == nil || s.MatchesAll() {
		return &bson.D{}, nil
	}
	filter, err := toBSONFilter(s)
	if err != nil {
		return nil, err
	}
	return &bson.D{
		*filter,
	}, nil
}

func GetSelectorOpString(op common.SelectorOp) string {
	switch op {
	case common.SelectorEq:
		return "$eq"
	case common.SelectorGt:
		return "$gt"
	case common.SelectorGte:
		return "$gte"
	case common.SelectorIn:
		return "$in"
	case common.SelectorLt:
		return "$lt"
	case common.SelectorLte:
		return "$lte"
	case common.SelectorNe:
		return "$ne"
	case common.SelectorNin:
		return "$nin"
	case common.SelectorAnd:
		return "$and"
	case common.SelectorNot:
		return "$not"
	case common.SelectorNor:
		return "$nor"
	case common.SelectorOr:
		return "$or"
	default:
		return "$nil"
	}
}
