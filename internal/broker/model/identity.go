package model

import (
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/G-Research/genie/internal/common/genieerrors"
)

const (
	// ReservedTagPrefix marks tags generated by the system. Users may never supply them.
	ReservedTagPrefix = "genie."
	IdTagPrefix       = ReservedTagPrefix + "id:"
	NameTagPrefix     = ReservedTagPrefix + "name:"
)

// IdTag returns the reserved tag that matches exactly the resource with the given id.
func IdTag(id string) string {
	return IdTagPrefix + id
}

// NameTag returns the reserved tag that matches every resource with the given name.
func NameTag(name string) string {
	return NameTagPrefix + name
}

func IsReservedTag(tag string) bool {
	return strings.HasPrefix(tag, ReservedTagPrefix)
}

// ValidateUserTags rejects any tag in the reserved namespace.
func ValidateUserTags(tags TagSet) error {
	var result *multierror.Error
	for _, tag := range tags.Slice() {
		if IsReservedTag(tag) {
			result = multierror.Append(result, &genieerrors.ErrInvalidArgument{
				Name:    "tags",
				Value:   tag,
				Message: "tags starting with " + ReservedTagPrefix + " are reserved for system use",
			})
		}
	}
	return result.ErrorOrNil()
}

// UserTags returns tags with every reserved tag removed.
func UserTags(tags TagSet) TagSet {
	result := make(TagSet, len(tags))
	for tag := range tags {
		if !IsReservedTag(tag) {
			result.Add(tag)
		}
	}
	return result
}

// WithoutIdentityTags returns tags without the identity tags of a resource with the given id and names.
// Any other reserved tag is kept, so that ValidateUserTags still rejects it.
func WithoutIdentityTags(tags TagSet, id string, names ...string) TagSet {
	result := tags.Clone()
	result.Remove(IdTag(id))
	for _, name := range names {
		result.Remove(NameTag(name))
	}
	return result
}

// ApplyIdentityTags replaces the tags of e with userTags plus the two reserved identity tags derived from the
// current id and name, and returns a copy of the result. It fails without modifying e if userTags contains a
// reserved tag or if e has no id or name yet.
//
// Re-applying with UserTags(e.GetResource().Tags()) yields the same set, and picks up a changed name.
func ApplyIdentityTags(e Entity, userTags TagSet) (TagSet, error) {
	if err := ValidateUserTags(userTags); err != nil {
		return nil, err
	}
	r := e.GetResource()
	if strings.TrimSpace(r.Id) == "" {
		return nil, &genieerrors.ErrInvalidArgument{
			Name:    "id",
			Value:   r.Id,
			Message: "an id must be assigned before identity tags can be applied",
		}
	}
	if strings.TrimSpace(r.Name) == "" {
		return nil, &genieerrors.ErrInvalidArgument{
			Name:    "name",
			Value:   r.Name,
			Message: "a name must be assigned before identity tags can be applied",
		}
	}
	tags := userTags.Clone()
	tags.Add(IdTag(r.Id), NameTag(r.Name))
	r.tags = tags
	return tags.Clone(), nil
}

// ReapplyIdentityTags refreshes the identity tags of e, keeping its current user tags.
func ReapplyIdentityTags(e Entity) (TagSet, error) {
	return ApplyIdentityTags(e, UserTags(e.GetResource().tags))
}
