package service

import (
	"strings"

	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/repository"
	"github.com/G-Research/genie/internal/broker/resolver"
	"github.com/G-Research/genie/internal/common/brokercontext"
	"github.com/G-Research/genie/internal/common/util"
)

const submittedMessage = "Job accepted and in initialization phase"

// SubmitJob validates and stores a new job in status INIT. Any status supplied with the job is ignored.
func (s *Service) SubmitJob(ctx *brokercontext.Context, job *model.Job) (*model.Job, error) {
	err := s.update(ctx, "submit_job", func(ctx *brokercontext.Context, txn repository.Txn) error {
		r := job.GetResource()
		if strings.TrimSpace(r.Id) == "" {
			r.Id = util.NewULID()
		}
		if strings.TrimSpace(r.Version) == "" {
			r.Version = model.DefaultJobVersion
		}
		job.Status = ""
		job.StatusMsg = ""
		job.ChosenClusterCriteria = nil
		if err := job.Validate(); err != nil {
			return err
		}
		if _, err := model.ApplyIdentityTags(job, r.Tags()); err != nil {
			return err
		}
		if err := s.machine.SetStatus(job, model.JobStatusInit, submittedMessage); err != nil {
			return err
		}
		now := s.clock.Now()
		r.SetCreated(now)
		r.Touch(now)
		r.EntityVersion = 0
		if err := txn.SaveJob(job); err != nil {
			return err
		}
		ctx.Log.Infof("submitted job %s", r.Id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ReportJobTransition("", model.JobStatusInit)
	return job, nil
}

func (s *Service) GetJob(ctx *brokercontext.Context, jobId string) (*model.Job, error) {
	var result *model.Job
	err := s.view(ctx, "get_job", func(ctx *brokercontext.Context, txn repository.Txn) (err error) {
		result, err = txn.GetJob(jobId)
		return err
	})
	return result, err
}

func (s *Service) GetJobStatus(ctx *brokercontext.Context, jobId string) (model.JobStatus, error) {
	job, err := s.GetJob(ctx, jobId)
	if err != nil {
		return "", err
	}
	return job.Status, nil
}

// SetJobStatus moves the job to status, recording msg with it.
func (s *Service) SetJobStatus(ctx *brokercontext.Context, jobId string, status model.JobStatus, msg string) error {
	var prior model.JobStatus
	err := s.update(ctx, "set_job_status", func(ctx *brokercontext.Context, txn repository.Txn) error {
		job, err := txn.GetJob(jobId)
		if err != nil {
			return err
		}
		prior = job.Status
		if err := s.machine.SetStatus(job, status, msg); err != nil {
			return err
		}
		job.Touch(s.clock.Now())
		if err := txn.SaveJob(job); err != nil {
			return err
		}
		ctx.Log.Infof("job %s moved from %s to %s", jobId, prior, status)
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.ReportJobTransition(prior, status)
	return nil
}

// ResolveCluster finds the clusters that can run a job with the requested criteria. Nothing is stored.
func (s *Service) ResolveCluster(ctx *brokercontext.Context, request resolver.Request) (*resolver.Result, error) {
	var result *resolver.Result
	err := s.view(ctx, "resolve_cluster", func(ctx *brokercontext.Context, txn repository.Txn) (err error) {
		result, err = resolver.New(txn).Resolve(ctx, request.ClusterCriteria, request.CommandCriteria)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.reportResolution(ctx, result)
	return result, nil
}

// ResolveClusterForJob resolves the stored job's criteria. On a match the job records the chosen criteria and is
// assigned the first cluster of the result together with its command. A miss leaves the job unchanged.
func (s *Service) ResolveClusterForJob(ctx *brokercontext.Context, jobId string) (*resolver.Result, error) {
	ctx = brokercontext.WithLogField(ctx, "job", jobId)
	var result *resolver.Result
	err := s.update(ctx, "resolve_cluster_for_job", func(ctx *brokercontext.Context, txn repository.Txn) error {
		job, err := txn.GetJob(jobId)
		if err != nil {
			return err
		}
		result, err = resolver.New(txn).Resolve(ctx, job.ClusterCriteria, job.CommandCriteria)
		if err != nil {
			return err
		}
		if !result.Matched() {
			return nil
		}
		cluster := result.Clusters[0]
		cmd := result.Candidate(cluster.Id)
		job.ChosenClusterCriteria = result.ChosenCriteria.Clone()
		job.ExecutionClusterId = cluster.Id
		job.ExecutionClusterName = cluster.Name
		job.CommandId = cmd.Id
		job.CommandName = cmd.Name
		job.Touch(s.clock.Now())
		return txn.SaveJob(job)
	})
	if err != nil {
		return nil, err
	}
	s.reportResolution(ctx, result)
	return result, nil
}

func (s *Service) reportResolution(ctx *brokercontext.Context, result *resolver.Result) {
	s.metrics.ReportResolution(result)
	if result.Matched() {
		ctx.Log.Debugf("resolved %d clusters with criteria %v", len(result.Clusters), result.ChosenCriteria.Slice())
	} else {
		ctx.Log.Infof("no cluster found: %s", result.Outcome)
	}
}
