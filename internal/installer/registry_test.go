package installer

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ekisa-team/arniepye/internal/config"
	"github.com/ekisa-team/arniepye/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock types ---

type MockInstaller struct {
	mock.Mock
}

func (m *MockInstaller) Kind() config.ArtifactKind {
	args := m.Called()
	return args.Get(0).(config.ArtifactKind)
}

func (m *MockInstaller) Install(ctx context.Context, path string, extra []string) error {
	args := m.Called(ctx, path, extra)
	return args.Error(0)
}

type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	a := m.Called(ctx, name, args)
	stderr, _ := a.Get(0).([]byte)
	return nil, stderr, a.Error(1)
}

// --- Tests ---

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	mockInstaller := new(MockInstaller)
	mockInstaller.On("Kind").Return(config.ArtifactKindMSI)

	require.NoError(t, reg.Register(mockInstaller))

	got, ok := reg.Get(config.ArtifactKindMSI)
	assert.True(t, ok)
	assert.Equal(t, mockInstaller, got)

	// Ensure a missing installer returns false
	_, ok = reg.Get(config.ArtifactKindEXE)
	assert.False(t, ok)

	// Registering the same kind twice is rejected
	assert.ErrorIs(t, reg.Register(mockInstaller), ErrAlreadyRegistered)

	mockInstaller.AssertExpectations(t)
}

func TestRegistry_InstallDispatchesByKind(t *testing.T) {
	reg := NewRegistry()
	msi := new(MockInstaller)
	exe := new(MockInstaller)
	msi.On("Kind").Return(config.ArtifactKindMSI)
	exe.On("Kind").Return(config.ArtifactKindEXE)
	exe.On("Install", mock.Anything, "/tmp/ext.exe", []string(nil)).Return(errors.New("exit status 2")).Once()

	require.NoError(t, reg.Register(msi))
	require.NoError(t, reg.Register(exe))

	err := reg.Install(context.Background(), config.ArtifactKindEXE, "/tmp/ext.exe", nil)
	assert.EqualError(t, err, "exit status 2")

	err = reg.Install(context.Background(), config.ArtifactKindScript, "/tmp/bootstrap.py", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	msi.AssertNotCalled(t, "Install", mock.Anything, mock.Anything, mock.Anything)
	exe.AssertExpectations(t)
}

func TestMSIInstaller_Install(t *testing.T) {
	r := new(MockCommandRunner)
	r.On("Run", mock.Anything, "msiexec", []string{"/i", `C:\tmp\python.msi`, "/passive"}).
		Return([]byte(nil), nil).Once()

	i := NewMSIInstaller("", runner.NewExecutorWithRunner(time.Minute, r))
	require.NoError(t, i.Install(context.Background(), `C:\tmp\python.msi`, []string{"/passive"}))

	r.AssertExpectations(t)
}

func TestEXEInstaller_InstallFailureKeepsExitCode(t *testing.T) {
	r := new(MockCommandRunner)
	r.On("Run", mock.Anything, "/tmp/pywin32.exe", []string(nil)).
		Return([]byte("access denied"), &runner.ExitError{Code: 5}).Once()

	i := NewEXEInstaller(runner.NewExecutorWithRunner(time.Minute, r))
	err := i.Install(context.Background(), "/tmp/pywin32.exe", nil)

	require.Error(t, err)
	assert.Equal(t, 5, runner.ExitCode(err))
	assert.Contains(t, err.Error(), "access denied")

	r.AssertExpectations(t)
}

func TestNewDefaultRegistry(t *testing.T) {
	reg := NewDefaultRegistry(config.Default().Install, runner.NewExecutor(time.Minute))

	for _, kind := range []config.ArtifactKind{config.ArtifactKindMSI, config.ArtifactKindEXE} {
		i, ok := reg.Get(kind)
		require.True(t, ok, kind)
		assert.Equal(t, kind, i.Kind())
	}
}
