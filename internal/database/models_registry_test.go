package database

import (
	"testing"

	modelspkg "campus/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesLoginState(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*modelspkg.LoginState); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include LoginState")
}

func TestPersistentModels_IncludesBlockTables(t *testing.T) {
	var modBlock, userBlock bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *modelspkg.ModeratorBlock:
			modBlock = true
		case *modelspkg.UserBlock:
			userBlock = true
		}
	}
	require.True(t, modBlock, "PersistentModels should include ModeratorBlock")
	require.True(t, userBlock, "PersistentModels should include UserBlock")
}
