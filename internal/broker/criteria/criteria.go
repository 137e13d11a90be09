// Package criteria converts cluster and command criteria to and from the flat string form used for storage
// and on the command line, e.g. "sched:adhoc,type:yarn|sched:sla" for two cluster criteria sets.
//
// Delimiters are not escaped, so tags must not contain either delimiter.
package criteria

import (
	"strings"

	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/common/genieerrors"
)

const (
	TagDelimiter = ","
	SetDelimiter = "|"
)

// EncodeTags joins the tags of a single set in sorted order.
func EncodeTags(tags model.TagSet) string {
	return strings.Join(tags.Slice(), TagDelimiter)
}

// EncodeClusterCriteria encodes each set with EncodeTags and joins the sets in their original order.
func EncodeClusterCriteria(criteria []model.TagSet) string {
	sets := make([]string, len(criteria))
	for i, set := range criteria {
		sets[i] = EncodeTags(set)
	}
	return strings.Join(sets, SetDelimiter)
}

// DecodeTags parses a single tag set. Tags are kept verbatim and blank entries are dropped;
// at least one tag must remain. A set delimiter in value is rejected.
func DecodeTags(value string) (model.TagSet, error) {
	if strings.Contains(value, SetDelimiter) {
		return nil, &genieerrors.ErrInvalidArgument{
			Name:    "tags",
			Value:   value,
			Message: "tags must not contain " + SetDelimiter,
		}
	}
	tags := splitTags(value)
	if tags.IsEmpty() {
		return nil, &genieerrors.ErrInvalidArgument{
			Name:    "tags",
			Value:   value,
			Message: "no tags found",
		}
	}
	return tags, nil
}

// DecodeClusterCriteria parses an ordered list of tag sets as DecodeTags does. Sets that contain no tags are dropped;
// at least one set must remain.
func DecodeClusterCriteria(value string) ([]model.TagSet, error) {
	var result []model.TagSet
	for _, segment := range strings.Split(value, SetDelimiter) {
		if tags := splitTags(segment); !tags.IsEmpty() {
			result = append(result, tags)
		}
	}
	if len(result) == 0 {
		return nil, &genieerrors.ErrInvalidArgument{
			Name:    "clusterCriteria",
			Value:   value,
			Message: "no criteria sets found",
		}
	}
	return result, nil
}

func splitTags(value string) model.TagSet {
	tags := model.NewTagSet()
	for _, tag := range strings.Split(value, TagDelimiter) {
		if strings.TrimSpace(tag) != "" {
			tags.Add(tag)
		}
	}
	return tags
}
