package common

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)

const (
	KEY_SYSTEM_PARAM = "system_param:%s"
	KEY_JOB_LOCK     = "job:%s"
)

const (
	LOG_PREFIX_SCHEDULER   = "SCHEDULER"
	LOG_PREFIX_TVDB_CLIENT = "TVDB-CLIENT"
	LOG_PREFIX_MEDIA       = "MEDIA-SERVER-CLIENT"
)
