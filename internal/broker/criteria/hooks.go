package criteria

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/G-Research/genie/internal/broker/model"
)

var (
	tagSetType          = reflect.TypeOf(model.TagSet{})
	clusterCriteriaType = reflect.TypeOf([]model.TagSet{})
)

// TagSetHookFunc decodes a model.TagSet from either its flat string form or a list of tags.
func TagSetHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != tagSetType {
			return data, nil
		}
		switch f.Kind() {
		case reflect.String:
			return DecodeTags(data.(string))
		case reflect.Slice, reflect.Array:
			v := reflect.ValueOf(data)
			tags := model.NewTagSet()
			for i := 0; i < v.Len(); i++ {
				tag, ok := v.Index(i).Interface().(string)
				if !ok {
					return nil, errors.Errorf("tag %v is of type %T; expected a string", v.Index(i).Interface(), v.Index(i).Interface())
				}
				tags.Add(tag)
			}
			return tags, nil
		default:
			return data, nil
		}
	}
}

// ClusterCriteriaHookFunc decodes an ordered list of tag sets from the flat string form.
// Lists are left to mapstructure, which decodes each element with TagSetHookFunc.
func ClusterCriteriaHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != clusterCriteriaType {
			return data, nil
		}
		return DecodeClusterCriteria(data.(string))
	}
}
