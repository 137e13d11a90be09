package model

import (
	"time"
)

// Kind names a type of resource managed by the broker.
type Kind string

const (
	KindApplication Kind = "application"
	KindCommand     Kind = "command"
	KindCluster     Kind = "cluster"
	KindJob         Kind = "job"
)

// Entity is implemented by every resource kind.
type Entity interface {
	GetResource() *Resource
	Kind() Kind
}

// Resource holds the fields shared by applications, commands, clusters and jobs.
// Tags always contain the reserved identity tags once the resource has been saved through the service layer,
// which validates and re-applies them on every save.
type Resource struct {
	Id          string    `json:"id"`
	Name        string    `json:"name" validate:"notblank"`
	User        string    `json:"user" validate:"notblank"`
	Version     string    `json:"version" validate:"notblank"`
	Description string    `json:"description,omitempty"`
	SetupFile   string    `json:"setupFile,omitempty"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
	// Incremented by every save. Zero means the resource has never been saved.
	EntityVersion int64 `json:"entityVersion"`

	tags         TagSet
	configs      StringSet
	dependencies StringSet
}

func (r *Resource) GetResource() *Resource {
	return r
}

// Tags returns a copy of the resource's tags, including reserved identity tags.
func (r *Resource) Tags() TagSet {
	return r.tags.Clone()
}

// SetTags replaces the tags wholesale, without validation. Used to supply user tags before a save.
func (r *Resource) SetTags(tags TagSet) {
	r.tags = tags.Clone()
}

func (r *Resource) Configs() StringSet {
	return r.configs.Clone()
}

func (r *Resource) SetConfigs(configs StringSet) {
	r.configs = configs.Clone()
}

func (r *Resource) AddConfigs(configs ...string) {
	r.configs = r.configs.Clone()
	r.configs.Add(configs...)
}

func (r *Resource) Dependencies() StringSet {
	return r.dependencies.Clone()
}

func (r *Resource) SetDependencies(dependencies StringSet) {
	r.dependencies = dependencies.Clone()
}

func (r *Resource) AddDependencies(dependencies ...string) {
	r.dependencies = r.dependencies.Clone()
	r.dependencies.Add(dependencies...)
}

// SetCreated only ever moves the creation time backwards: a time older than the current one is accepted,
// a newer one is ignored. The first call on an unset resource always succeeds.
func (r *Resource) SetCreated(created time.Time) bool {
	if created.IsZero() {
		return false
	}
	if r.Created.IsZero() || created.Before(r.Created) {
		r.Created = created
		return true
	}
	return false
}

// Touch records a mutation at now.
func (r *Resource) Touch(now time.Time) {
	r.Updated = now
}

func (r *Resource) clone() Resource {
	c := *r
	c.tags = r.tags.Clone()
	c.configs = r.configs.Clone()
	c.dependencies = r.dependencies.Clone()
	return c
}

// resourceJSON carries the unexported sets through encoding so that stores can persist a resource losslessly.
type resourceJSON struct {
	Id            string    `json:"id"`
	Name          string    `json:"name"`
	User          string    `json:"user"`
	Version       string    `json:"version"`
	Description   string    `json:"description,omitempty"`
	SetupFile     string    `json:"setupFile,omitempty"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
	EntityVersion int64     `json:"entityVersion"`
	Tags          TagSet    `json:"tags"`
	Configs       StringSet `json:"configs"`
	Dependencies  StringSet `json:"dependencies"`
}

func (r *Resource) toJSON() resourceJSON {
	return resourceJSON{
		Id:            r.Id,
		Name:          r.Name,
		User:          r.User,
		Version:       r.Version,
		Description:   r.Description,
		SetupFile:     r.SetupFile,
		Created:       r.Created,
		Updated:       r.Updated,
		EntityVersion: r.EntityVersion,
		Tags:          r.tags.Clone(),
		Configs:       r.configs.Clone(),
		Dependencies:  r.dependencies.Clone(),
	}
}

func (j resourceJSON) toResource() Resource {
	return Resource{
		Id:            j.Id,
		Name:          j.Name,
		User:          j.User,
		Version:       j.Version,
		Description:   j.Description,
		SetupFile:     j.SetupFile,
		Created:       j.Created,
		Updated:       j.Updated,
		EntityVersion: j.EntityVersion,
		tags:          j.Tags.Clone(),
		configs:       j.Configs.Clone(),
		dependencies:  j.Dependencies.Clone(),
	}
}
