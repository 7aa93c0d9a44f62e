package model

type TaskKind string

const (
	TaskJoinChannel   TaskKind = "JOIN_CHANNEL"
	TaskFollowTwitter TaskKind = "FOLLOW_TWITTER"
)

// Task is an external action a referred user confirms on their own.
type Task struct {
	Kind  TaskKind
	Title string
	URL   string
}

func DefaultTasks(channelURL, twitterURL string) []Task {
	tasks := make([]Task, 0, 2)
	if channelURL != "" {
		tasks = append(tasks, Task{Kind: TaskJoinChannel, Title: "Join our Telegram channel", URL: channelURL})
	}
	if twitterURL != "" {
		tasks = append(tasks, Task{Kind: TaskFollowTwitter, Title: "Follow us on X", URL: twitterURL})
	}
	return tasks
}
