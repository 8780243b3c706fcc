package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/armory/internal/data"
	"github.com/udisondev/armory/internal/game/gravgun"
	"github.com/udisondev/armory/internal/model"
	"github.com/udisondev/armory/internal/sim"
)

func TestConsole_QueuesCommands(t *testing.T) {
	cat, err := data.DefaultCatalog()
	require.NoError(t, err)
	runner := sim.NewRunner(cat, sim.RunnerOptions{GravGun: gravgun.DefaultTuning()})
	sess, err := runner.NewSession(context.Background(), &sim.Scenario{Weapon: "frame"})
	require.NoError(t, err)

	in := strings.NewReader("attach auto_mechanism\n\nbogus\nfire\nstatus\nquit\nfire\n")
	var out bytes.Buffer
	newConsole(in, &out, sess).Run()

	assert.Equal(t, 3, sess.Queue().Len(), "attach, fire and status are queued; nothing after quit")
	assert.Contains(t, out.String(), `unknown command "bogus"`)

	sess.Tick()

	assert.Equal(t, uint64(1), sess.Weapon().Stats().Fired)
	assert.Equal(t, "auto_mechanism", sess.Weapon().Part(model.AttachMechanism).Name())
	assert.Contains(t, out.String(), "fired=1")
}
