package model

import (
	"encoding/json"
)

// Application is a set of binaries and configuration that commands depend on, e.g. a particular hadoop install.
type Application struct {
	Resource
	Status ApplicationStatus `json:"status"`

	// Ids of commands that depend on this application. Maintained only through the relationship functions.
	commandIds StringSet
}

func (a *Application) Kind() Kind {
	return KindApplication
}

// CommandIds returns the sorted ids of the commands that depend on this application.
func (a *Application) CommandIds() []string {
	return a.commandIds.Slice()
}

func (a *Application) HasCommands() bool {
	return !a.commandIds.IsEmpty()
}

func (a *Application) Validate() error {
	var statusErr error
	if !a.Status.IsValid() {
		statusErr = invalidStatus(KindApplication, string(a.Status))
	}
	return validateEntity(a, statusErr)
}

func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	return &Application{
		Resource:   a.Resource.clone(),
		Status:     a.Status,
		commandIds: a.commandIds.Clone(),
	}
}

type applicationJSON struct {
	resourceJSON
	Status     ApplicationStatus `json:"status"`
	CommandIds StringSet         `json:"commandIds"`
}

func (a Application) MarshalJSON() ([]byte, error) {
	return json.Marshal(applicationJSON{
		resourceJSON: a.Resource.toJSON(),
		Status:       a.Status,
		CommandIds:   a.commandIds,
	})
}

func (a *Application) UnmarshalJSON(data []byte) error {
	var j applicationJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*a = Application{
		Resource:   j.resourceJSON.toResource(),
		Status:     j.Status,
		commandIds: j.CommandIds.Clone(),
	}
	return nil
}
