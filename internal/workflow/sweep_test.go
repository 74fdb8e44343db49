package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/edvin/machines/internal/activity"
	"github.com/edvin/machines/internal/core"
)

type SweepMachinesWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *SweepMachinesWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.env.RegisterActivity(&activity.MachineSweep{})
}

func (s *SweepMachinesWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func (s *SweepMachinesWorkflowTestSuite) TestRunsBothSweepsInOrder() {
	var order []string
	s.env.OnActivity("SweepOrphanedNetworking", mock.Anything).
		Return(core.SweepResult{Processed: 3}, nil).
		Run(func(args mock.Arguments) { order = append(order, "networking") })
	s.env.OnActivity("SweepExpired", mock.Anything).
		Return(core.SweepResult{Processed: 1}, nil).
		Run(func(args mock.Arguments) { order = append(order, "expired") })

	s.env.ExecuteWorkflow(SweepMachinesWorkflow)
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var res SweepMachinesResult
	s.NoError(s.env.GetWorkflowResult(&res))
	s.Equal(3, res.Networking.Processed)
	s.Equal(1, res.Expired.Processed)
	s.Equal([]string{"networking", "expired"}, order)
}

func (s *SweepMachinesWorkflowTestSuite) TestNetworkingFailureStillSweepsExpired() {
	s.env.OnActivity("SweepOrphanedNetworking", mock.Anything).
		Return(core.SweepResult{}, errors.New("list machines: timeout"))
	s.env.OnActivity("SweepExpired", mock.Anything).
		Return(core.SweepResult{Processed: 2}, nil)

	s.env.ExecuteWorkflow(SweepMachinesWorkflow)
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *SweepMachinesWorkflowTestSuite) TestExpiredFailureFailsWorkflow() {
	s.env.OnActivity("SweepOrphanedNetworking", mock.Anything).Return(core.SweepResult{}, nil)
	s.env.OnActivity("SweepExpired", mock.Anything).
		Return(core.SweepResult{}, errors.New("list expired machines: timeout"))

	s.env.ExecuteWorkflow(SweepMachinesWorkflow)
	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func TestSweepMachinesWorkflow(t *testing.T) {
	suite.Run(t, new(SweepMachinesWorkflowTestSuite))
}
