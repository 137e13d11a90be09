package service

import (
	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/repository"
	"github.com/G-Research/genie/internal/common/brokercontext"
	"github.com/G-Research/genie/internal/common/genieerrors"
)

// The operations in this file read or change the configs, dependencies and tags of an application,
// command or cluster selected by kind and id.

func (s *Service) GetConfigs(ctx *brokercontext.Context, kind model.Kind, id string) ([]string, error) {
	e, err := s.read(ctx, "get_configs", kind, id)
	if err != nil {
		return nil, err
	}
	return e.GetResource().Configs().Slice(), nil
}

func (s *Service) AddConfigs(ctx *brokercontext.Context, kind model.Kind, id string, configs []string) ([]string, error) {
	e, err := s.mutate(ctx, "add_configs", kind, id, func(e resource) error {
		e.GetResource().AddConfigs(configs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.GetResource().Configs().Slice(), nil
}

func (s *Service) UpdateConfigs(ctx *brokercontext.Context, kind model.Kind, id string, configs []string) ([]string, error) {
	e, err := s.mutate(ctx, "update_configs", kind, id, func(e resource) error {
		e.GetResource().SetConfigs(model.NewStringSet(configs...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.GetResource().Configs().Slice(), nil
}

func (s *Service) RemoveAllConfigs(ctx *brokercontext.Context, kind model.Kind, id string) error {
	_, err := s.mutate(ctx, "remove_all_configs", kind, id, func(e resource) error {
		e.GetResource().SetConfigs(nil)
		return nil
	})
	return err
}

// Dependencies are only held by applications and commands.

func (s *Service) GetDependencies(ctx *brokercontext.Context, kind model.Kind, id string) ([]string, error) {
	if err := checkDependencyKind(kind); err != nil {
		return nil, err
	}
	e, err := s.read(ctx, "get_dependencies", kind, id)
	if err != nil {
		return nil, err
	}
	return e.GetResource().Dependencies().Slice(), nil
}

func (s *Service) AddDependencies(ctx *brokercontext.Context, kind model.Kind, id string, dependencies []string) ([]string, error) {
	if err := checkDependencyKind(kind); err != nil {
		return nil, err
	}
	e, err := s.mutate(ctx, "add_dependencies", kind, id, func(e resource) error {
		e.GetResource().AddDependencies(dependencies...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.GetResource().Dependencies().Slice(), nil
}

func (s *Service) UpdateDependencies(ctx *brokercontext.Context, kind model.Kind, id string, dependencies []string) ([]string, error) {
	if err := checkDependencyKind(kind); err != nil {
		return nil, err
	}
	e, err := s.mutate(ctx, "update_dependencies", kind, id, func(e resource) error {
		e.GetResource().SetDependencies(model.NewStringSet(dependencies...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.GetResource().Dependencies().Slice(), nil
}

func (s *Service) RemoveAllDependencies(ctx *brokercontext.Context, kind model.Kind, id string) error {
	if err := checkDependencyKind(kind); err != nil {
		return err
	}
	_, err := s.mutate(ctx, "remove_all_dependencies", kind, id, func(e resource) error {
		e.GetResource().SetDependencies(nil)
		return nil
	})
	return err
}

// Tag operations take user tags and return every tag of the resource, identity tags included.
// The identity tags are derived from the resource's id and name and are re-applied on every change.

func (s *Service) GetTags(ctx *brokercontext.Context, kind model.Kind, id string) ([]string, error) {
	e, err := s.read(ctx, "get_tags", kind, id)
	if err != nil {
		return nil, err
	}
	return e.GetResource().Tags().Slice(), nil
}

func (s *Service) AddTags(ctx *brokercontext.Context, kind model.Kind, id string, tags []string) ([]string, error) {
	return s.setTags(ctx, "add_tags", kind, id, func(current model.TagSet) (model.TagSet, error) {
		return current.Union(model.NewTagSet(tags...)), nil
	})
}

func (s *Service) UpdateTags(ctx *brokercontext.Context, kind model.Kind, id string, tags []string) ([]string, error) {
	return s.setTags(ctx, "update_tags", kind, id, func(model.TagSet) (model.TagSet, error) {
		return model.NewTagSet(tags...), nil
	})
}

// RemoveAllTags leaves only the identity tags.
func (s *Service) RemoveAllTags(ctx *brokercontext.Context, kind model.Kind, id string) ([]string, error) {
	return s.setTags(ctx, "remove_all_tags", kind, id, func(model.TagSet) (model.TagSet, error) {
		return model.NewTagSet(), nil
	})
}

// RemoveTag fails with *genieerrors.ErrInvalidArgument for a reserved tag. Removing a tag the resource does not
// have is not an error.
func (s *Service) RemoveTag(ctx *brokercontext.Context, kind model.Kind, id string, tag string) ([]string, error) {
	return s.setTags(ctx, "remove_tag", kind, id, func(current model.TagSet) (model.TagSet, error) {
		if model.IsReservedTag(tag) {
			return nil, &genieerrors.ErrInvalidArgument{
				Name:    "tag",
				Value:   tag,
				Message: "reserved tags cannot be removed",
			}
		}
		current.Remove(tag)
		return current, nil
	})
}

// setTags replaces the user tags of a resource with the result of fn, which is given a copy of the current ones.
func (s *Service) setTags(ctx *brokercontext.Context, operation string, kind model.Kind, id string, fn func(current model.TagSet) (model.TagSet, error)) ([]string, error) {
	e, err := s.mutate(ctx, operation, kind, id, func(e resource) error {
		next, err := fn(model.UserTags(e.GetResource().Tags()))
		if err != nil {
			return err
		}
		_, err = model.ApplyIdentityTags(e, next)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e.GetResource().Tags().Slice(), nil
}

func (s *Service) read(ctx *brokercontext.Context, operation string, kind model.Kind, id string) (resource, error) {
	var result resource
	err := s.view(ctx, operation, func(ctx *brokercontext.Context, txn repository.Txn) error {
		e, err := getEntity(txn, kind, id)
		result = e
		return err
	})
	return result, err
}

// mutate loads a resource, applies fn to it and saves it.
func (s *Service) mutate(ctx *brokercontext.Context, operation string, kind model.Kind, id string, fn func(e resource) error) (resource, error) {
	var result resource
	err := s.update(ctx, operation, func(ctx *brokercontext.Context, txn repository.Txn) error {
		e, err := getEntity(txn, kind, id)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
		e.GetResource().Touch(s.clock.Now())
		if err := saveEntity(txn, e); err != nil {
			return err
		}
		result = e
		return nil
	})
	return result, err
}

func checkDependencyKind(kind model.Kind) error {
	if kind == model.KindApplication || kind == model.KindCommand {
		return nil
	}
	return &genieerrors.ErrInvalidArgument{
		Name:    "kind",
		Value:   string(kind),
		Message: "only applications and commands have dependencies",
	}
}
