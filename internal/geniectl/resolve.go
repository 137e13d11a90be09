package geniectl

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/G-Research/genie/internal/broker/configuration"
	"github.com/G-Research/genie/internal/broker/criteria"
	"github.com/G-Research/genie/internal/broker/resolver"
	"github.com/G-Research/genie/internal/common/brokercontext"
)

type ResolveParams struct {
	// Optional. Resources to load before resolving.
	FixturePath string
	// Flat forms, e.g. "genie.id:c1|pig,prod" and "pig".
	ClusterCriteria string
	CommandCriteria string
	// When set, the criteria of this fixture job are resolved and the job records the result.
	JobId string
}

type resolution struct {
	Outcome        resolver.Outcome  `json:"outcome"`
	ChosenCriteria []string          `json:"chosenCriteria,omitempty"`
	Clusters       []resolvedCluster `json:"clusters"`
}

type resolvedCluster struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Command string `json:"command"`
}

// Resolve loads the fixture, if any, and prints the clusters that can run a job with the given criteria.
func (a *App) Resolve(ctx *brokercontext.Context, params ResolveParams) error {
	svc, release, err := a.newService(ctx)
	if err != nil {
		return err
	}
	defer release()
	if params.FixturePath != "" {
		fixture, err := LoadFixture(params.FixturePath)
		if err != nil {
			return err
		}
		if err := fixture.Load(ctx, svc); err != nil {
			return errors.WithMessagef(err, "failed to load fixture %s", params.FixturePath)
		}
	}

	var result *resolver.Result
	if params.JobId != "" {
		result, err = svc.ResolveClusterForJob(ctx, params.JobId)
	} else {
		var request resolver.Request
		if request.ClusterCriteria, err = criteria.DecodeClusterCriteria(params.ClusterCriteria); err != nil {
			return err
		}
		if request.CommandCriteria, err = criteria.DecodeTags(params.CommandCriteria); err != nil {
			return err
		}
		result, err = svc.ResolveCluster(ctx, request)
	}
	if err != nil {
		return err
	}
	return a.printYaml(toResolution(result))
}

func toResolution(result *resolver.Result) resolution {
	r := resolution{Outcome: result.Outcome, Clusters: []resolvedCluster{}}
	if result.ChosenCriteria != nil {
		r.ChosenCriteria = result.ChosenCriteria.Slice()
	}
	for _, cluster := range result.Clusters {
		r.Clusters = append(r.Clusters, resolvedCluster{
			Id:      cluster.Id,
			Name:    cluster.Name,
			Command: result.Candidate(cluster.Id).Id,
		})
	}
	return r
}

// Validate loads the fixture into an empty in-memory broker and reports the first resource that is rejected.
func (a *App) Validate(ctx *brokercontext.Context, fixturePath string) error {
	fixture, err := LoadFixture(fixturePath)
	if err != nil {
		return err
	}
	memdbOnly := *a
	memdbOnly.Params = &Params{Config: a.Params.Config}
	memdbOnly.Params.Config.Store.Type = configuration.StoreTypeMemDb
	svc, release, err := memdbOnly.newService(ctx)
	if err != nil {
		return err
	}
	defer release()
	if err := fixture.Load(ctx, svc); err != nil {
		return err
	}
	fmt.Fprintf(
		a.Out, "%s is valid: %d applications, %d commands, %d clusters, %d jobs\n",
		fixturePath, len(fixture.Applications), len(fixture.Commands), len(fixture.Clusters), len(fixture.Jobs),
	)
	return nil
}

// EncodeCriteria prints the flat form of an ordered list of tag sets, each given as comma separated tags.
func (a *App) EncodeCriteria(sets []string) error {
	clusterCriteria, err := criteria.DecodeClusterCriteria(strings.Join(sets, criteria.SetDelimiter))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, criteria.EncodeClusterCriteria(clusterCriteria))
	return nil
}

// DecodeCriteria prints the tag sets held in the flat form, one list per set.
func (a *App) DecodeCriteria(value string) error {
	clusterCriteria, err := criteria.DecodeClusterCriteria(value)
	if err != nil {
		return err
	}
	sets := make([][]string, len(clusterCriteria))
	for i, set := range clusterCriteria {
		sets[i] = set.Slice()
	}
	return a.printYaml(sets)
}

func (a *App) printYaml(v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = a.Out.Write(out)
	return err
}
