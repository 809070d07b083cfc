package mysql

import "modelserve/pkg/store/mysql/model"

type (
	ReloadEvent     = model.ReloadEvent
	JSONStringArray = model.JSONStringArray
)
