package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"
)

var ErrNoTaskList = errors.New("no task lists found")

func (c *Client) tasksService(ctx context.Context, tok *oauth2.Token) (*tasks.Service, error) {
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(c.httpClient(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}
	return svc, nil
}

func defaultTaskList(ctx context.Context, svc *tasks.Service) (string, error) {
	lists, err := svc.Tasklists.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to list task lists: %w", err)
	}
	if len(lists.Items) == 0 {
		return "", ErrNoTaskList
	}
	return lists.Items[0].Id, nil
}

// CreateTask inserts a task into the user's default task list and returns the
// provider-side task id.
func (c *Client) CreateTask(ctx context.Context, tok *oauth2.Token, title, notes string, due *time.Time) (string, error) {
	svc, err := c.tasksService(ctx, tok)
	if err != nil {
		return "", err
	}

	listID, err := defaultTaskList(ctx, svc)
	if err != nil {
		return "", err
	}

	task := &tasks.Task{Title: title, Notes: notes}
	if due != nil {
		task.Due = due.Format(time.RFC3339)
	}

	created, err := svc.Tasks.Insert(listID, task).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create task: %w", err)
	}
	return created.Id, nil
}

// CompleteTask marks a provider-side task as completed.
func (c *Client) CompleteTask(ctx context.Context, tok *oauth2.Token, taskID string) error {
	svc, err := c.tasksService(ctx, tok)
	if err != nil {
		return err
	}

	listID, err := defaultTaskList(ctx, svc)
	if err != nil {
		return err
	}

	task, err := svc.Tasks.Get(listID, taskID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to fetch task %s: %w", taskID, err)
	}

	task.Status = "completed"
	if _, err := svc.Tasks.Update(listID, taskID, task).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update task %s: %w", taskID, err)
	}
	return nil
}
