package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGame_IsUpcoming(t *testing.T) {
	future := &Game{CommenceTime: time.Now().Add(time.Hour)}
	assert.True(t, future.IsUpcoming())

	past := &Game{CommenceTime: time.Now().Add(-time.Hour)}
	assert.False(t, past.IsUpcoming())

	finished := &Game{CommenceTime: time.Now().Add(time.Hour), Completed: true}
	assert.False(t, finished.IsUpcoming())
}

func TestOdds_Key(t *testing.T) {
	o := &Odds{GameID: "g", BookmakerKey: "b", Market: "h2h", OutcomeType: "home"}
	assert.Equal(t, "g/b/h2h/home", o.Key())
}
