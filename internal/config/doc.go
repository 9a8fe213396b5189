// Package config loads tabprep settings. Defaults are overlaid by a YAML
// file (--config, else tabprep.yaml or configs/tabprep.yaml when present)
// and then by TABPREP_* environment variables, e.g.
//
//	TABPREP_IMPUTER_ESTIMATORS=100
//	TABPREP_IMPUTER_BOUNDARY=forward
//	TABPREP_VIEWER_ADDR=:8090
//	TABPREP_LOGGING_LEVEL=debug
//
// The merged Config is checked with validator struct tags before Load returns.
package config
