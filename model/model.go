package model

import (
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var snowflakeNode *snowflake.Node

var Models = []interface{}{
	&AuditEvent{},
}

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// GenerateID returns a new unique, time ordered identifier.
func GenerateID() int64 {
	return snowflakeNode.Generate().Int64()
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}
