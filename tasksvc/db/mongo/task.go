package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ichigozero/todokit/tasksvc"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	libmongo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TasksCollection = "tasks"

type taskDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Content   string             `bson:"content"`
	Priority  string             `bson:"priority"`
	Date      tasksvc.Date       `bson:"date"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d taskDocument) task() tasksvc.Task {
	return tasksvc.Task{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Content:   d.Content,
		Priority:  tasksvc.Priority(d.Priority),
		Date:      d.Date,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type taskRepository struct {
	tasks *libmongo.Collection
}

func NewTaskRepository(db *libmongo.Database) tasksvc.TaskRepository {
	return &taskRepository{tasks: db.Collection(TasksCollection)}
}

func (r *taskRepository) Create(ctx context.Context, task tasksvc.Task) (tasksvc.Task, error) {
	doc := taskDocument{
		ID:        primitive.NewObjectID(),
		Name:      task.Name,
		Content:   task.Content,
		Priority:  string(task.Priority),
		Date:      task.Date,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}

	if _, err := r.tasks.InsertOne(ctx, doc); err != nil {
		return tasksvc.Task{}, fmt.Errorf("insert task: %w", err)
	}

	task.ID = doc.ID.Hex()
	return task, nil
}

func (r *taskRepository) Find(ctx context.Context, taskID string) (tasksvc.Task, error) {
	oid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return tasksvc.Task{}, tasksvc.ErrNotFound
	}

	var doc taskDocument
	err = r.tasks.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	return decoded(doc, err, "find")
}

func (r *taskRepository) FindPage(ctx context.Context, skip, limit int) ([]tasksvc.Task, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cur, err := r.tasks.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]tasksvc.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.task())
	}
	return tasks, nil
}

func (r *taskRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.tasks.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *taskRepository) Update(ctx context.Context, taskID string, patch tasksvc.Patch) (tasksvc.Task, error) {
	oid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return tasksvc.Task{}, tasksvc.ErrNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Priority != nil {
		set["priority"] = string(*patch.Priority)
	}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	err = r.tasks.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	return decoded(doc, err, "update")
}

func (r *taskRepository) Delete(ctx context.Context, taskID string) (tasksvc.Task, error) {
	oid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return tasksvc.Task{}, tasksvc.ErrNotFound
	}

	var doc taskDocument
	err = r.tasks.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	return decoded(doc, err, "delete")
}

func decoded(doc taskDocument, err error, op string) (tasksvc.Task, error) {
	if errors.Is(err, libmongo.ErrNoDocuments) {
		return tasksvc.Task{}, tasksvc.ErrNotFound
	}
	if err != nil {
		return tasksvc.Task{}, fmt.Errorf("%s task: %w", op, err)
	}
	return doc.task(), nil
}
