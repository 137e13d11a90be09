package service

import (
	"github.com/G-Research/genie/internal/broker/criteria"
	"github.com/G-Research/genie/internal/broker/model"
)

// EncodeCriteria returns the stored form of an ordered list of cluster criteria.
func (s *Service) EncodeCriteria(clusterCriteria []model.TagSet) string {
	return criteria.EncodeClusterCriteria(clusterCriteria)
}

func (s *Service) DecodeCriteria(value string) ([]model.TagSet, error) {
	return criteria.DecodeClusterCriteria(value)
}

func (s *Service) EncodeTags(tags model.TagSet) string {
	return criteria.EncodeTags(tags)
}

func (s *Service) DecodeTags(value string) (model.TagSet, error) {
	return criteria.DecodeTags(value)
}
