package analytics

import "github.com/edulens/engagement-api/internal/models"

// assignResolver scores the "assign" kind. Submissions are individual written
// work; feedback flows back through grades and teacher comments, so the full
// cognitive ladder applies when feedback is enabled on the instance.
type assignResolver struct{}

func (assignResolver) Kind() string { return "assign" }

func (assignResolver) CognitiveDepthLevel(module models.CourseModule) int {
	if !module.SettingBool("feedback_enabled", true) {
		// without feedback the ceiling is submitting work at all
		return 2
	}
	return 5
}

func (assignResolver) SocialBreadthLevel(models.CourseModule) int { return 2 }

func (assignResolver) FeedbackEvents(action FeedbackAction) []string {
	switch action {
	case FeedbackViewed:
		return []string{"assign.feedback_viewed", "assign.grade_viewed"}
	case FeedbackReplied:
		return []string{"assign.feedback_comment_created"}
	case FeedbackSubmitted:
		return []string{"assign.submission_created", "assign.submission_updated"}
	}
	return nil
}

func (assignResolver) FeedbackRequiresGrades() bool { return true }

// forumResolver scores the "forum" kind. Forums are conversational, so the
// social potential is the highest of any kind while the cognitive ladder tops
// out at replying to feedback. Posts are public; no grades are required for
// feedback to exist.
type forumResolver struct{}

func (forumResolver) Kind() string { return "forum" }

func (forumResolver) CognitiveDepthLevel(models.CourseModule) int { return 4 }

func (forumResolver) SocialBreadthLevel(models.CourseModule) int { return 5 }

func (forumResolver) FeedbackEvents(action FeedbackAction) []string {
	switch action {
	case FeedbackViewed:
		return []string{"forum.discussion_viewed", "forum.post_viewed"}
	case FeedbackReplied:
		return []string{"forum.post_created", "forum.discussion_created"}
	}
	return nil
}

func (forumResolver) FeedbackRequiresGrades() bool { return false }

// quizResolver scores the "quiz" kind. Reviewing a graded attempt and
// retaking the quiz afterwards cover the top of the cognitive ladder.
type quizResolver struct{}

func (quizResolver) Kind() string { return "quiz" }

func (quizResolver) CognitiveDepthLevel(module models.CourseModule) int {
	if !module.SettingBool("feedback_enabled", true) {
		return 2
	}
	return 5
}

func (quizResolver) SocialBreadthLevel(models.CourseModule) int { return 2 }

func (quizResolver) FeedbackEvents(action FeedbackAction) []string {
	switch action {
	case FeedbackViewed:
		return []string{"quiz.attempt_reviewed", "quiz.feedback_viewed"}
	case FeedbackReplied:
		return []string{"quiz.attempt_comment_created"}
	case FeedbackSubmitted:
		return []string{"quiz.attempt_submitted"}
	}
	return nil
}

func (quizResolver) FeedbackRequiresGrades() bool { return true }

// resourceResolver scores the "resource" kind: static course material that
// can only ever be opened.
type resourceResolver struct{}

func (resourceResolver) Kind() string { return "resource" }

func (resourceResolver) CognitiveDepthLevel(models.CourseModule) int { return 1 }

func (resourceResolver) SocialBreadthLevel(models.CourseModule) int { return 1 }

func (resourceResolver) FeedbackEvents(FeedbackAction) []string { return nil }

func (resourceResolver) FeedbackRequiresGrades() bool { return false }
